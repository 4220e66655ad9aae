package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/emf-schedule/internal/api/httpapi"
	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/metrics"
	repository "github.com/oshokin/emf-schedule/internal/repository/schedule"
)

// Options controls the adapter process. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// URL overrides the upstream schedule location.
	URL string
	// ListenAddress overrides the HTTP listen address.
	ListenAddress string
	// CacheTTL overrides the upstream cache lifetime when non-nil.
	CacheTTL *time.Duration
	// LogLevel overrides the configured log level.
	LogLevel string
}

// Run serves schedule queries until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "schedule-adapter")

	settings, err := resolve(opts)
	if err != nil {
		return err
	}

	if err = cmdutil.ConfigureLogger(settings.LogLevel); err != nil {
		return err
	}

	source := repository.NewHTTPSource(settings.APIURL, repository.WithTimeout(settings.Timeout))
	handler := httpapi.NewHandler(source, settings.Adapter.CacheTTL, metrics.New())

	logger.InfoKV(ctx, "Serving schedule queries",
		"api_url", settings.APIURL,
		"listen_address", settings.Adapter.ListenAddress,
		"cache_ttl", settings.Adapter.CacheTTL.String())

	return httpapi.Serve(ctx, settings.Adapter.ListenAddress, handler.Routes())
}

// resolve loads the configuration and applies option overrides.
func resolve(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.URL != "" {
		settings.APIURL = opts.URL
	}

	if opts.ListenAddress != "" {
		settings.Adapter.ListenAddress = opts.ListenAddress
	}

	if opts.CacheTTL != nil {
		settings.Adapter.CacheTTL = *opts.CacheTTL
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return settings, nil
}
