package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/easypaper/easypaper/internal/api"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// errReported marks a failure whose envelope has already been written.
var errReported = errors.New("operation failed")

// invoke runs op through the registry and writes the response. In text mode
// a failure is returned as an error and a unit result renders tmpl against
// params; in json and yaml modes the whole envelope is written.
func (a *app) invoke(cmd *cobra.Command, op string, params any, tmpl string) (api.Response[any], error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return api.Response[any]{}, err
	}

	resp := a.registry.Invoke(cmd.Context(), op, raw)
	return resp, a.emit(cmd.OutOrStdout(), resp, tmpl, params)
}

func (a *app) emit(w io.Writer, resp api.Response[any], tmpl string, fallback any) error {
	if a.format != formatText {
		if err := a.print(w, resp, ""); err != nil {
			return err
		}
		if !resp.OK {
			return errReported
		}
		return nil
	}

	if !resp.OK {
		return errors.New(*resp.Error)
	}

	data := fallback
	if resp.Data != nil && *resp.Data != nil {
		data = *resp.Data
	}
	return renderText(w, tmpl, data)
}

// print writes v in the selected format, using tmpl for text.
func (a *app) print(w io.Writer, v any, tmpl string) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		return renderText(w, tmpl, v)
	}
}

func renderText(w io.Writer, tmpl string, data any) error {
	if tmpl == "" {
		return nil
	}
	t, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("invalid output template: %w", err)
	}
	return t.Execute(w, data)
}

// writeYAML goes through JSON so field names match the json output.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
