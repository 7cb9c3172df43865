package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/version"
)

func newVersionCommand(a *app) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the version, git commit, build time, Go version and platform.

Examples:
  easypaper version
  easypaper version --short
  easypaper version -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetShortVersion())
				return err
			}
			return a.print(cmd.OutOrStdout(), version.GetBuildInfo(), versionReport)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print the version only")

	return cmd
}
