package project

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Engine identifies the external typesetting tool.
type Engine string

const (
	EngineTectonic Engine = "tectonic"
	EngineLatexmk  Engine = "latexmk"
)

// Engines lists every supported engine.
var Engines = []Engine{EngineTectonic, EngineLatexmk}

// ParseEngine converts s into an Engine, rejecting unknown values.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case EngineTectonic, EngineLatexmk:
		return Engine(s), nil
	default:
		return "", fmt.Errorf("unknown engine type: %s", s)
	}
}

// Valid reports whether e is one of the supported engines.
func (e Engine) Valid() bool {
	_, err := ParseEngine(string(e))
	return err == nil
}

func (e Engine) String() string {
	return string(e)
}

// UnmarshalYAML rejects unknown engine names while the file is parsed.
func (e *Engine) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseEngine(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = parsed
	return nil
}

// UnmarshalJSON applies the same rule for configs that arrive over the bridge.
func (e *Engine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEngine(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
