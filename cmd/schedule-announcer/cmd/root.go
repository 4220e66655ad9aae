package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/service/relay"
	"github.com/oshokin/emf-schedule/internal/version"
)

// rootCmd represents the base command for announcing events.
var rootCmd = &cobra.Command{
	Use:   "schedule-announcer",
	Short: "Announce conference events as they start.",
	Long: `Follows the conference schedule and announces every event when it is due.

The schedule is refreshed on a fixed interval, and changes to it are picked up
without announcing anything twice. Announcements go to WebSocket displays, to
gRPC subscribers and, when a broker is configured, to MQTT topics.

Every flag can also be set through a SCHEDULE_* environment variable
(for example SCHEDULE_MQTT_BROKER), including from .env files.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadEnvironment,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		env, err := cmdutil.NewEnv(cmd.Flags())
		if err != nil {
			return err
		}

		options := &relay.Options{
			ConfigPath:      env.String("config", ""),
			URL:             env.String("url", ""),
			RefreshInterval: env.Duration("refresh-interval", 0),
			ListenAddress:   env.String("listen", ""),
			GRPCAddress:     env.String("grpc", ""),
			MQTTBroker:      env.String("mqtt-broker", ""),
			MQTTTopicPrefix: env.String("mqtt-topic-prefix", ""),
			LogLevel:        env.String("log-level", ""),
		}

		if env.IsSet("pre-event-announcement-time") {
			lead := env.Duration("pre-event-announcement-time", 0)
			options.PreEventAnnouncementTime = &lead
		}

		return relay.Run(ctx, options)
	},
}

// Execute runs the schedule-announcer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnvironment reads .env files before flags are resolved.
func loadEnvironment(_ *cobra.Command, _ []string) error {
	return cmdutil.LoadDotEnv(cmdutil.DotEnvFiles...)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringP("config", "c", "", "path to configuration file (default schedule-settings.yaml if present)")
	flags.StringP("url", "u", "", "schedule API URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Duration("refresh-interval", 0, "how often to refresh the schedule")
	flags.Duration("pre-event-announcement-time", 0, "announce events this long before they start")
	flags.String("listen", "", "address for /metrics, /healthz and /ws")
	flags.String("grpc", "", "address for the gRPC announcement stream")
	flags.String("mqtt-broker", "", "MQTT broker host, empty disables MQTT")
	flags.String("mqtt-topic-prefix", "", "MQTT topic prefix")
}
