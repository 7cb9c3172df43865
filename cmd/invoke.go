package cmd

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newInvokeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <operation> [params]",
		Short: "Run a raw operation and print its envelope",
		Long: `Invoke an operation by name with JSON parameters, exactly as the editor does
over the bridge, and print the {ok, data, error} envelope. Parameters are
read from stdin when the argument is "-".

Examples:
  easypaper invoke template_list
  easypaper invoke file_exists '{"path": "main.tex"}'
  echo '{"project_dir": "/papers/icml"}' | easypaper invoke build_compile -`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			if a.registry == nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return a.registry.Operations(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var params json.RawMessage
			if len(args) == 2 {
				raw := args[1]
				if raw == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return err
					}
					raw = string(data)
				}
				params = json.RawMessage(strings.TrimSpace(raw))
			}

			resp := a.registry.Invoke(cmd.Context(), args[0], params)

			// The envelope is the output, whatever --format says about text.
			if a.format == formatYAML {
				err := writeYAML(cmd.OutOrStdout(), resp)
				if err == nil && !resp.OK {
					err = errReported
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.OK {
				return errReported
			}
			return nil
		},
	}
}
