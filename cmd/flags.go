package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   *string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(p *string, def string, choices ...string) *choiceValue {
	*p = def
	return &choiceValue{value: p, choices: choices}
}

func (c *choiceValue) String() string {
	if c.value == nil {
		return ""
	}
	return *c.value
}

func (c *choiceValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if slices.Contains(c.choices, s) {
		*c.value = s
		return nil
	}

	msg := fmt.Sprintf("must be one of: %s", strings.Join(c.choices, ", "))
	if guess := closest(s, c.choices); guess != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", guess)
	}
	return fmt.Errorf("%s", msg)
}

func (c *choiceValue) Type() string {
	return "string"
}

// closest returns the choice sharing a prefix with s, or "".
func closest(s string, choices []string) string {
	if s == "" {
		return ""
	}
	for _, c := range choices {
		if strings.HasPrefix(c, s) || strings.HasPrefix(s, c) {
			return c
		}
	}
	return ""
}

// validPort reports an error for ports outside 1-65535.
func validPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
