package cmd

import (
	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/api"
	"github.com/easypaper/easypaper/internal/scaffolding"
)

func newNewCommand(a *app) *cobra.Command {
	var templateID, name string

	cmd := &cobra.Command{
		Use:     "new <dir>",
		Aliases: []string{"init"},
		Short:   "Scaffold a new paper from a template",
		Long: `Create a project in dir with main.tex, refs.bib, figures/, sections/,
.easypaper/project.yml, out/ and a .gitignore.

When --name is omitted the project name is derived from the directory name.

Examples:
  easypaper new my-paper
  easypaper new icml-2025 --template ieeetran --name "Sparse Attention"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			if name == "" {
				name = scaffolding.DefaultProjectName(dir)
			}

			params := api.TemplateApplyParams{ProjectDir: dir, TemplateID: templateID, ProjectName: name}
			_, err = a.invoke(cmd, api.OpTemplateApply, params, newReport)
			return err
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "article", "template id (see 'easypaper template list')")
	cmd.Flags().StringVarP(&name, "name", "n", "", "project name written to project.yml")

	return cmd
}

func newTemplateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Inspect the built-in templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.invoke(cmd, api.OpTemplateList, nil, templateListReport)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a template's main.tex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpTemplateGetContent, api.TemplateParams{TemplateID: args[0]}, contentReport)
			return err
		},
	})

	return cmd
}
