// Package project manages the per-project configuration record stored at
// .easypaper/project.yml inside every paper directory.
//
// The record is loaded fresh on every build or clean request. A missing file
// is the explicit "no config yet" state and yields Default(); a file that
// exists but cannot be parsed is a fatal error for the calling operation.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "github.com/easypaper/easypaper/internal/errors"
)

const (
	// Dir is the project-local directory holding EasyPaper state.
	Dir = ".easypaper"
	// FileName is the configuration file name inside Dir.
	FileName = "project.yml"

	DefaultName          = "My Paper"
	DefaultMain          = "main.tex"
	DefaultOutDir        = "out"
	DefaultMinIntervalMS = 600
	SchemaVersion        = 1
)

// Config is the persisted project record.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Name    string        `yaml:"name" json:"name"`
	Main    string        `yaml:"main" json:"main"`
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Compile CompileConfig `yaml:"compile" json:"compile"`
}

// EngineConfig selects the typesetting engine and extra arguments appended
// verbatim after the generated flags.
type EngineConfig struct {
	Type Engine   `yaml:"type" json:"type"`
	Args []string `yaml:"args" json:"args"`
}

// CompileConfig holds compile flags shared by both engines.
type CompileConfig struct {
	SyncTeX       bool   `yaml:"synctex" json:"synctex"`
	ShellEscape   bool   `yaml:"shell_escape" json:"shell_escape"`
	OutDir        string `yaml:"outdir" json:"outdir"`
	MinIntervalMS uint64 `yaml:"min_interval_ms" json:"min_interval_ms"`
}

// Default returns the configuration used when a project has no project.yml.
func Default() *Config {
	return &Config{
		Version: SchemaVersion,
		Name:    DefaultName,
		Main:    DefaultMain,
		Engine: EngineConfig{
			Type: EngineTectonic,
			Args: []string{},
		},
		Compile: CompileConfig{
			SyncTeX:       true,
			ShellEscape:   false,
			OutDir:        DefaultOutDir,
			MinIntervalMS: DefaultMinIntervalMS,
		},
	}
}

// Path returns the location of project.yml for projectDir.
func Path(projectDir string) string {
	return filepath.Join(projectDir, Dir, FileName)
}

// Load reads the configuration for projectDir.
func Load(projectDir string) (*Config, error) {
	path := Path(projectDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, apperrors.WrapConfig(err, apperrors.ErrCodeConfigRead, "failed to read project config")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes a project.yml document. Keys omitted from the document keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// Args must come from the document alone, not be merged into the default slice.
	cfg.Engine.Args = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(cfg); err != nil {
		// An empty document decodes to io.EOF; treat it like a fresh project.
		if len(bytes.TrimSpace(data)) == 0 {
			return Default(), nil
		}
		return nil, apperrors.WrapConfig(err, apperrors.ErrCodeConfigParse, "failed to parse project config")
	}

	if cfg.Engine.Args == nil {
		cfg.Engine.Args = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.WrapConfig(err, apperrors.ErrCodeConfigParse, "failed to parse project config")
	}

	return cfg, nil
}

// Validate checks values the YAML decoder cannot enforce.
func (c *Config) Validate() error {
	if c.Main == "" {
		return fmt.Errorf("main entry file must not be empty")
	}
	out := c.Compile.OutDir
	if out == "" {
		return fmt.Errorf("outdir must not be empty")
	}
	if filepath.IsAbs(out) {
		return fmt.Errorf("outdir should be a relative path: %s", out)
	}
	// clean removes the output directory, so it must sit strictly inside the project.
	if !filepath.IsLocal(out) || filepath.Clean(out) == "." {
		return fmt.Errorf("outdir must be a subdirectory of the project: %s", out)
	}
	return nil
}

// Save writes the configuration for projectDir, creating .easypaper if needed.
func (c *Config) Save(projectDir string) error {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeDirCreate, "failed to create .easypaper directory")
	}

	data, err := c.Marshal()
	if err != nil {
		return apperrors.WrapConfig(err, apperrors.ErrCodeConfigWrite, "failed to serialize project config")
	}

	if err := atomicWriteFile(Path(projectDir), data, 0o644); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeConfigWrite, "failed to write project config")
	}

	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OutputDir returns the absolute-or-relative output directory for projectDir.
func (c *Config) OutputDir(projectDir string) string {
	return filepath.Join(projectDir, c.Compile.OutDir)
}

// Stem returns the entry file path with its extension removed.
func (c *Config) Stem() string {
	return c.Main[:len(c.Main)-len(filepath.Ext(c.Main))]
}
