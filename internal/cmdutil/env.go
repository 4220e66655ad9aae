package cmdutil

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oshokin/emf-schedule/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. SCHEDULE_URL for --url.
const EnvPrefix = "SCHEDULE"

// DotEnvFiles are loaded in this order. Earlier files and the real
// environment win over later ones.
//
//nolint:gochecknoglobals // Read-only list.
var DotEnvFiles = []string{".env.local", ".env"}

var errInvalidLogLevel = errors.New("unknown log level")

// LoadDotEnv loads the given dotenv files into the process environment,
// skipping missing ones.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	return nil
}

// Env resolves settings with the precedence flag, then environment, then fallback.
type Env struct {
	v *viper.Viper
}

// NewEnv binds flags so that each one can be overridden by SCHEDULE_<NAME>,
// dashes in flag names becoming underscores.
func NewEnv(flags *pflag.FlagSet) (*Env, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	return &Env{v: v}, nil
}

// IsSet reports whether key was given as a flag or in the environment.
func (e *Env) IsSet(key string) bool {
	return e.v.IsSet(key)
}

// String returns the flag or environment value of key, or fallback.
func (e *Env) String(key, fallback string) string {
	if e.v.IsSet(key) {
		return e.v.GetString(key)
	}

	return fallback
}

// Duration returns the flag or environment value of key, or fallback.
func (e *Env) Duration(key string, fallback time.Duration) time.Duration {
	if e.v.IsSet(key) {
		return e.v.GetDuration(key)
	}

	return fallback
}

// Int returns the flag or environment value of key, or fallback.
func (e *Env) Int(key string, fallback int) int {
	if e.v.IsSet(key) {
		return e.v.GetInt(key)
	}

	return fallback
}

// StringSlice returns the flag or comma separated environment value of key, or fallback.
func (e *Env) StringSlice(key string, fallback []string) []string {
	if e.v.IsSet(key) {
		return e.v.GetStringSlice(key)
	}

	return fallback
}

// ConfigureLogger applies a textual log level to the shared logger.
func ConfigureLogger(level string) error {
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, level)
	}

	logger.SetLevel(parsed)

	return nil
}
