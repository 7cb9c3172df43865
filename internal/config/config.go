// Package config provides application settings for the easypaper command
// using Viper for loading from files, environment variables and flags.
//
// These are settings of the tool itself (logging, bridge server, synctex
// discovery, watch debounce). Per-project settings live in each project's
// .easypaper/project.yml and are handled by package project.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/synctex"
)

// EnvPrefix is prepended to every environment override (EASYPAPER_SERVER_PORT).
const EnvPrefix = "EASYPAPER"

// FileName is the settings file looked up in the user config directory.
const FileName = "easypaper.yml"

type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	SyncTeX SyncTeXConfig `mapstructure:"synctex" yaml:"synctex" json:"synctex"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch" json:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host" json:"host"`
	Port           int      `mapstructure:"port" yaml:"port" json:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
}

type SyncTeXConfig struct {
	Candidates []string `mapstructure:"candidates" yaml:"candidates" json:"candidates"`
}

type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
}

// Addr returns host:port for the bridge server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7878)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"http://127.0.0.1",
		"tauri://localhost",
	})
	v.SetDefault("synctex.candidates", synctex.DefaultCandidates)
	v.SetDefault("watch.debounce_ms", 300)
}

// Load builds the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds and validates the configuration held by v. Defaults are
// registered first so an empty viper yields a usable config.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Comma separated env values arrive as a single string.
	config.Server.AllowedOrigins = splitList(v.GetStringSlice("server.allowed_origins"))
	config.SyncTeX.Candidates = splitList(v.GetStringSlice("synctex.candidates"))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultFile returns the settings file in the user config directory, or ""
// when that directory cannot be determined.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "easypaper", FileName)
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log config: format must be text or json, got %q", config.Log.Format)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if len(config.SyncTeX.Candidates) == 0 {
		return fmt.Errorf("synctex config: candidates must not be empty")
	}

	if config.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch config: debounce_ms must not be negative")
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

// EnvKeyReplacer maps nested keys to environment names (server.port -> SERVER_PORT).
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
