package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/emf-schedule/internal/cmdutil"
	domain "github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/format"
	"github.com/oshokin/emf-schedule/internal/service/listing"
	"github.com/oshokin/emf-schedule/internal/version"
)

// rootCmd represents the base command for browsing the schedule.
var rootCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Browse the conference schedule from the terminal.",
	Long: `Fetches the conference schedule and prints listings, the now-and-next guide,
event details or venues. The watch command follows live announcements from
a running schedule-announcer.

Global flags can also be set through SCHEDULE_* environment variables
(for example SCHEDULE_URL), including from .env files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return cmdutil.LoadDotEnv(cmdutil.DotEnvFiles...)
	},
}

// Execute runs the schedule CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLister resolves the global flags of cmd into a lister printing to its output.
func newLister(cmd *cobra.Command) (*listing.Lister, error) {
	env, err := cmdutil.NewEnv(cmd.Flags())
	if err != nil {
		return nil, err
	}

	return listing.NewFromConfig(&listing.Options{
		ConfigPath: env.String("config", ""),
		URL:        env.String("url", ""),
		LogLevel:   env.String("log-level", ""),
	}, cmd.OutOrStdout())
}

// tableOptions reads the listing flags shared by the table commands.
func tableOptions(cmd *cobra.Command) (listing.TableOptions, error) {
	flags := cmd.Flags()

	venues, err := flags.GetStringSlice("venue")
	if err != nil {
		return listing.TableOptions{}, err
	}

	maxWidth, err := flags.GetInt("max-width")
	if err != nil {
		return listing.TableOptions{}, err
	}

	opts := listing.TableOptions{Venues: venues, MaxWidth: maxWidth}

	if flags.Lookup("columns") != nil {
		names, err := flags.GetStringSlice("columns")
		if err != nil {
			return listing.TableOptions{}, err
		}

		if opts.Columns, err = format.ParseColumns(names); err != nil {
			return listing.TableOptions{}, err
		}
	}

	return opts, nil
}

// now reads --now, defaulting to the current time.
func now(cmd *cobra.Command) (time.Time, error) {
	raw, err := cmd.Flags().GetString("now")
	if err != nil {
		return time.Time{}, err
	}

	if raw == "" {
		return time.Now(), nil
	}

	t, err := domain.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}

	return t, nil
}

func addTableFlags(cmd *cobra.Command, withColumns bool) {
	cmd.Flags().StringSliceP("venue", "v", nil, "only show these venues")
	cmd.Flags().IntP("max-width", "w", format.DefaultMaxWidth, "maximum width of the table in characters")

	if withColumns {
		names := make([]string, 0, len(format.AllColumns()))
		for _, column := range format.AllColumns() {
			names = append(names, string(column))
		}

		cmd.Flags().StringSlice("columns", nil, fmt.Sprintf("columns to show, any of %v", names))
	}
}

func addNowFlag(cmd *cobra.Command) {
	cmd.Flags().String("now", "", "time to consider as now, e.g. 2024-05-31T12:00:00+01:00")
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringP("config", "c", "", "path to configuration file (default schedule-settings.yaml if present)")
	flags.StringP("url", "u", "", "schedule API URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(fullCmd, upcomingCmd, nowNextCmd, detailsCmd, venuesCmd, watchCmd)
}
