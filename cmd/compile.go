package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/api"
	"github.com/easypaper/easypaper/internal/build"
)

func newCompileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "compile [dir]",
		Aliases: []string{"c", "build"},
		Short:   "Compile a project to PDF",
		Long: `Compile the project in dir (default: current directory) with the engine
named in .easypaper/project.yml and report errors and warnings.

The command exits non-zero when the engine fails or no PDF was produced.

Examples:
  easypaper compile
  easypaper compile papers/icml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}

			resp, err := a.invoke(cmd, api.OpBuildCompile, api.ProjectParams{ProjectDir: dir}, compileReport)
			if err != nil {
				return err
			}
			if resp.Data == nil {
				return nil
			}
			if res, ok := (*resp.Data).(*build.Result); ok && !res.Success {
				return errReported
			}
			return nil
		},
	}
}

func newCleanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [dir]",
		Short: "Remove a project's output directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			_, err = a.invoke(cmd, api.OpBuildClean, api.ProjectParams{ProjectDir: dir}, cleanReport)
			return err
		},
	}
}

// projectDir returns the absolute project directory from optional args.
func projectDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return filepath.Abs(dir)
}
