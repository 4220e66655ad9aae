package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/service/listing"
)

// watchCmd follows live announcements.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print announcements from a running schedule-announcer.",
	Long: `Subscribes to the gRPC announcement stream of a schedule-announcer and
prints each announced event as a JSON line until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		env, err := cmdutil.NewEnv(cmd.Flags())
		if err != nil {
			return err
		}

		if err = cmdutil.ConfigureLogger(env.String("log-level", "info")); err != nil {
			return err
		}

		return listing.Watch(ctx, env.String("server", config.DefaultGRPCAddress), cmd.OutOrStdout())
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().StringP("server", "s", "", "announcer gRPC address (default "+config.DefaultGRPCAddress+")")
}
