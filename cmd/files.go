package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/api"
)

func newFilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"f"},
		Short:   "Read and edit project files",
	}

	var recursive, respectIgnore bool
	ls := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			params := api.ListParams{Dir: dir, Recursive: recursive, RespectIgnore: respectIgnore}
			_, err := a.invoke(cmd, api.OpFileList, params, fileListReport)
			return err
		},
	}
	ls.Flags().BoolVarP(&recursive, "recursive", "r", false, "walk the whole tree")
	ls.Flags().BoolVarP(&respectIgnore, "respect-ignore", "i", false, "hide entries matched by the directory's .gitignore")

	cat := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpFileRead, api.PathParams{Path: args[0]}, contentReport)
			return err
		},
	}

	var create bool
	write := &cobra.Command{
		Use:   "write <path> [content]",
		Short: "Write a file from an argument or stdin",
		Long: `Write content to path. Without a content argument the file is read
from stdin. Missing parent directories are created; with --create=false the
file must already exist.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}

			params := api.WriteParams{Path: args[0], Content: content, Create: create}
			_, err := a.invoke(cmd, api.OpFileWrite, params, writeReport)
			return err
		},
	}
	write.Flags().BoolVar(&create, "create", true, "create the file when it does not exist")

	rm := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpFileDelete, api.PathParams{Path: args[0]}, deleteReport)
			return err
		},
	}

	mv := &cobra.Command{
		Use:   "mv <old> <new>",
		Short: "Rename a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpFileRename, api.RenameParams{OldPath: args[0], NewPath: args[1]}, renameReport)
			return err
		},
	}

	mkdir := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpCreateDir, api.PathParams{Path: args[0]}, mkdirReport)
			return err
		},
	}

	exists := &cobra.Command{
		Use:   "exists <path>",
		Short: "Report whether a path exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.invoke(cmd, api.OpFileExists, api.PathParams{Path: args[0]}, existsReport)
			return err
		},
	}

	cmd.AddCommand(ls, cat, write, rm, mv, mkdir, exists)
	return cmd
}
