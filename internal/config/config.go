package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/emf-schedule/internal/logger"
)

// Config holds the settings shared by the schedule binaries.
type Config struct {
	// APIURL is the upstream schedule JSON document.
	APIURL string `yaml:"api_url"`
	// Timeout bounds every upstream request.
	Timeout time.Duration `yaml:"timeout"`
	// RefreshInterval is how often the announcer fetches the schedule again.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// PreEventAnnouncementTime announces events this long before they start.
	PreEventAnnouncementTime time.Duration `yaml:"pre_event_announcement_time"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Announcer configures the schedule-announcer listeners.
	Announcer AnnouncerConfig `yaml:"announcer"`
	// MQTT configures the broker announcements are published to.
	MQTT MQTTConfig `yaml:"mqtt"`
	// Adapter configures the schedule-adapter HTTP server.
	Adapter AdapterConfig `yaml:"adapter"`
}

// AnnouncerConfig holds the announcer listener addresses.
type AnnouncerConfig struct {
	// ListenAddress serves /metrics, /healthz and /ws.
	ListenAddress string `yaml:"listen_addr"`
	// GRPCAddress serves the announcement stream. Empty disables it.
	GRPCAddress string `yaml:"grpc_addr"`
}

// MQTTConfig holds the MQTT broker connection.
type MQTTConfig struct {
	// Broker is the broker host. Empty disables MQTT.
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// TopicPrefix is prepended to the online, full and smol topics.
	TopicPrefix string `yaml:"topic_prefix"`
}

// AdapterConfig holds the HTTP adapter settings.
type AdapterConfig struct {
	ListenAddress string `yaml:"listen_addr"`
	// CacheTTL is how long a fetched schedule is reused. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "schedule-settings.yaml"

	// DefaultAPIURL is the EMF 2024 schedule.
	DefaultAPIURL = "https://www.emfcamp.org/schedule/2024.json"

	// DefaultTimeout is the default duration for upstream requests.
	DefaultTimeout = 10 * time.Second

	// DefaultRefreshInterval is the default schedule refresh period.
	DefaultRefreshInterval = 60 * time.Second

	// DefaultAnnouncerAddress is the default announcer HTTP listener.
	DefaultAnnouncerAddress = "127.0.0.1:9090"

	// DefaultGRPCAddress is the default announcement stream listener.
	DefaultGRPCAddress = "127.0.0.1:9091"

	// DefaultMQTTPort is the standard unencrypted MQTT port.
	DefaultMQTTPort = 1883

	// DefaultMQTTClientID identifies the announcer to the broker.
	DefaultMQTTClientID = "emfcamp-mqtt-schedule-announcer"

	// DefaultTopicPrefix is the default MQTT topic prefix.
	DefaultTopicPrefix = "emfcamp/schedule"

	// DefaultAdapterAddress is the default adapter listener.
	DefaultAdapterAddress = "127.0.0.1:8000"

	// DefaultCacheTTL is how long the adapter reuses a fetched schedule.
	DefaultCacheTTL = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAPIURLRequired is returned when the schedule URL is missing.
	errAPIURLRequired = errors.New("api url must be provided")
	// errInvalidAPIURL is returned when the schedule URL is not an absolute http(s) URL.
	errInvalidAPIURL = errors.New("api url must be an absolute http or https URL")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("unknown log level")
	// errInvalidPort is returned when the MQTT port is out of range.
	errInvalidPort = errors.New("mqtt port must be between 1 and 65535")
	// errNegativeDuration is returned for durations that must not be negative.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:          DefaultAPIURL,
		Timeout:         DefaultTimeout,
		RefreshInterval: DefaultRefreshInterval,
		LogLevel:        "info",
		Announcer: AnnouncerConfig{
			ListenAddress: DefaultAnnouncerAddress,
			GRPCAddress:   DefaultGRPCAddress,
		},
		MQTT: MQTTConfig{
			Port:        DefaultMQTTPort,
			ClientID:    DefaultMQTTClientID,
			TopicPrefix: DefaultTopicPrefix,
		},
		Adapter: AdapterConfig{
			ListenAddress: DefaultAdapterAddress,
			CacheTTL:      DefaultCacheTTL,
		},
	}
}

// Load reads configuration from path on top of the defaults and validates it.
// When path is empty and the default file does not exist the defaults are returned.
func Load(path string) (*Config, error) {
	implicit := path == ""
	if implicit {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if implicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold broker credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills unset values with defaults.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.APIURL == "" {
		return errAPIURLRequired
	}

	if err := ValidateURL(settings.APIURL); err != nil {
		return err
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
	}

	// Set default timeout if not specified.
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.RefreshInterval <= 0 {
		settings.RefreshInterval = DefaultRefreshInterval
	}

	if settings.PreEventAnnouncementTime < 0 {
		return fmt.Errorf("pre_event_announcement_time: %w", errNegativeDuration)
	}

	if settings.Adapter.CacheTTL < 0 {
		return fmt.Errorf("adapter.cache_ttl: %w", errNegativeDuration)
	}

	for name, address := range map[string]string{
		"announcer.listen_addr": settings.Announcer.ListenAddress,
		"announcer.grpc_addr":   settings.Announcer.GRPCAddress,
		"adapter.listen_addr":   settings.Adapter.ListenAddress,
	} {
		if address == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if settings.MQTT.Broker == "" {
		return nil
	}

	if settings.MQTT.Port <= 0 || settings.MQTT.Port > 65535 {
		return errInvalidPort
	}

	if settings.MQTT.ClientID == "" {
		settings.MQTT.ClientID = DefaultMQTTClientID
	}

	return nil
}

// ValidateURL checks that raw is an absolute http or https URL.
func ValidateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidAPIURL, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidAPIURL, raw)
	}

	return nil
}

// StartOffset converts the pre-event announcement time into an announcer offset.
func (c *Config) StartOffset() time.Duration {
	return -c.PreEventAnnouncementTime
}
