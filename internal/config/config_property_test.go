//go:build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/viper"
)

func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ports are accepted exactly within 0-65535", prop.ForAll(
		func(port int) bool {
			v := viper.New()
			v.Set("server.port", port)
			cfg, err := LoadFrom(v)
			if port < 0 || port > 65535 {
				return err != nil
			}
			return err == nil && cfg.Server.Port == port
		},
		gen.IntRange(-1000, 70000),
	))

	properties.Property("comma lists split into trimmed non-empty entries", prop.ForAll(
		func(items []string) bool {
			out := splitList([]string{strings.Join(items, " , ")})
			var want []string
			for _, item := range items {
				if s := strings.TrimSpace(item); s != "" {
					want = append(want, s)
				}
			}
			if len(out) != len(want) {
				return false
			}
			for i := range out {
				if out[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("hosts with shell metacharacters are rejected", prop.ForAll(
		func(prefix string, meta rune) bool {
			v := viper.New()
			v.Set("server.host", prefix+string(meta))
			_, err := LoadFrom(v)
			return err != nil
		},
		gen.AlphaString(),
		gen.OneConstOf(';', '&', '|', '$', '`', '<', '>'),
	))

	properties.TestingRun(t)
}
