package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand sets the --version flag of root and adds a
// `version` subcommand printing the build metadata, or only the version
// with --short.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.Version = Short()

	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the version, commit hash and build timestamp injected at build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			text := Full(root.Name())
			if short {
				text = Short()
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	root.AddCommand(cmd)
}
