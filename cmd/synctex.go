package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/api"
	apperrors "github.com/easypaper/easypaper/internal/errors"
)

func newSyncTeXCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synctex",
		Short: "Map between PDF positions and source lines",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "forward <pdf> <page> <x> <y>",
		Short: "Find the source line at a PDF position",
		Example: `  easypaper synctex forward out/main.pdf 2 306.5 420
  easypaper synctex forward out/main.pdf 1 72 700 -o json`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := intArg("page", args[1])
			if err != nil {
				return err
			}
			x, err := floatArg("x", args[2])
			if err != nil {
				return err
			}
			y, err := floatArg("y", args[3])
			if err != nil {
				return err
			}

			params := api.ForwardParams{PDFPath: args[0], Page: page, X: x, Y: y}
			_, err = a.invoke(cmd, api.OpSyncTeXForward, params, sourceLocationReport)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "backward <source> <line> <column> <pdf>",
		Short:   "Find the PDF position of a source line",
		Example: `  easypaper synctex backward sections/intro.tex 42 0 out/main.pdf`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := intArg("line", args[1])
			if err != nil {
				return err
			}
			column, err := intArg("column", args[2])
			if err != nil {
				return err
			}

			params := api.BackwardParams{SourcePath: args[0], Line: line, Column: column, PDFPath: args[3]}
			_, err = a.invoke(cmd, api.OpSyncTeXBackward, params, pdfPositionReport)
			return err
		},
	})

	return cmd
}

func intArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewValidationError(apperrors.ErrCodeInvalidParams,
			fmt.Sprintf("%s must be an integer, got %q", name, s))
	}
	return n, nil
}

func floatArg(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(apperrors.ErrCodeInvalidParams,
			fmt.Sprintf("%s must be a number, got %q", name, s))
	}
	return f, nil
}
