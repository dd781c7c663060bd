package main

import (
	"fmt"

	"github.com/ludo-technologies/lshdedup/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd prints the build of lshdedup. Reports carry the same
// version string, so --short is what scripts compare against.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the lshdedup build",
		Long: `Print the release, commit, build date, Go toolchain and platform of this
lshdedup binary.

Examples:
  lshdedup version
  lshdedup version -s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line := version.Info()
			if short {
				line = version.Short()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print the release number only")
	return cmd
}
