package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/emf-schedule/internal/format"
)

var (
	// fullCmd lists every event.
	fullCmd = &cobra.Command{
		Use:   "full",
		Short: "List every event in the schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := tableOptions(cmd)
			if err != nil {
				return err
			}

			lister, err := newLister(cmd)
			if err != nil {
				return err
			}

			return lister.Full(cmd.Context(), opts)
		},
	}

	// upcomingCmd lists events that have not finished yet.
	upcomingCmd = &cobra.Command{
		Use:   "upcoming",
		Short: "List events that have not finished yet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := tableOptions(cmd)
			if err != nil {
				return err
			}

			at, err := now(cmd)
			if err != nil {
				return err
			}

			lister, err := newLister(cmd)
			if err != nil {
				return err
			}

			return lister.Upcoming(cmd.Context(), opts, at)
		},
	}

	// nowNextCmd shows the per-venue guide.
	nowNextCmd = &cobra.Command{
		Use:   "now-next",
		Short: "Show what is on now and next at each venue.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := tableOptions(cmd)
			if err != nil {
				return err
			}

			at, err := now(cmd)
			if err != nil {
				return err
			}

			lister, err := newLister(cmd)
			if err != nil {
				return err
			}

			return lister.NowNext(cmd.Context(), opts, at)
		},
	}

	// detailsCmd prints one event in full.
	detailsCmd = &cobra.Command{
		Use:   "details ID",
		Short: "Show everything about a single event.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid event ID %q: %w", args[0], err)
			}

			raw, err := cmd.Flags().GetString("color")
			if err != nil {
				return err
			}

			mode, err := format.ParseColorMode(raw)
			if err != nil {
				return err
			}

			lister, err := newLister(cmd)
			if err != nil {
				return err
			}

			return lister.Details(cmd.Context(), uint32(id), mode.Enabled(outputFile(cmd)))
		},
	}

	// venuesCmd prints the venue names.
	venuesCmd = &cobra.Command{
		Use:   "venues",
		Short: "List the venues.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, err := newLister(cmd)
			if err != nil {
				return err
			}

			return lister.Venues(cmd.Context())
		},
	}
)

// outputFile returns the command output when it is a file, for terminal detection.
func outputFile(cmd *cobra.Command) *os.File {
	f, _ := cmd.OutOrStdout().(*os.File)

	return f
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	addTableFlags(fullCmd, true)
	addTableFlags(upcomingCmd, true)
	addNowFlag(upcomingCmd)
	addTableFlags(nowNextCmd, false)
	addNowFlag(nowNextCmd)

	detailsCmd.Flags().String("color", string(format.ColorAuto), "colour the output: auto, always, never")
}
