package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/service/adapter"
	"github.com/oshokin/emf-schedule/internal/version"
)

// rootCmd represents the base command for serving schedule queries.
var rootCmd = &cobra.Command{
	Use:   "schedule-adapter [listen-address]",
	Short: "Serve filtered views of the conference schedule over HTTP.",
	Long: `Starts an HTTP server in front of the upstream schedule API.

Endpoints:
  /schedule      events, filtered by venue and time and optionally sorted
  /now-and-next  what is on now and next at each venue
  /venues        venue names
  /healthz       liveness probe
  /metrics       Prometheus metrics

The listen address can be provided as argument to override config.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return cmdutil.LoadDotEnv(cmdutil.DotEnvFiles...)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		env, err := cmdutil.NewEnv(cmd.Flags())
		if err != nil {
			return err
		}

		// Use listen address argument if provided, otherwise rely on env and config.
		listenAddress := env.String("listen", "")
		if len(args) > 0 {
			listenAddress = args[0]
		}

		options := &adapter.Options{
			ConfigPath:    env.String("config", ""),
			URL:           env.String("url", ""),
			ListenAddress: listenAddress,
			LogLevel:      env.String("log-level", ""),
		}

		if env.IsSet("cache-ttl") {
			ttl := env.Duration("cache-ttl", 0)
			options.CacheTTL = &ttl
		}

		return adapter.Run(ctx, options)
	},
}

// Execute runs the schedule-adapter CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringP("config", "c", "", "path to configuration file (default schedule-settings.yaml if present)")
	flags.StringP("url", "u", "", "schedule API URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("listen", "", "HTTP listen address")
	flags.Duration("cache-ttl", 0, "how long to cache the upstream schedule, 0 disables caching")
}
