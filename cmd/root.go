// Package cmd provides the easypaper command line.
//
// Settings are resolved with the following precedence:
//  1. Command-line flags (--log-level, --port, ...)
//  2. EASYPAPER_* environment variables (EASYPAPER_SERVER_PORT, EASYPAPER_SYNCTEX_CANDIDATES)
//  3. The settings file: --config, else EASYPAPER_CONFIG_FILE, else
//     easypaper.yml in the user config directory
//  4. Built-in defaults
//
// Every subcommand that maps to a backend operation goes through the same
// operation registry as the bridge server, so the CLI and the editor see
// identical results and errors.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/easypaper/easypaper/internal/api"
	"github.com/easypaper/easypaper/internal/build"
	"github.com/easypaper/easypaper/internal/config"
	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/fileaccess"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/process"
	"github.com/easypaper/easypaper/internal/scaffolding"
	"github.com/easypaper/easypaper/internal/synctex"
)

// configFileEnv names a settings file without using --config.
const configFileEnv = "EASYPAPER_CONFIG_FILE"

// Deps are the side-effecting collaborators of the command tree. Zero
// fields are replaced with the OS-backed implementations.
type Deps struct {
	FS     fileaccess.FileSystem
	Runner process.Runner
}

// app is the state shared by every command of one invocation.
type app struct {
	deps    Deps
	v       *viper.Viper
	cfgFile string
	format  string

	settingsFile string

	settings *config.Config
	logger   logging.Logger
	services api.Services
	registry *api.Registry
}

// NewRootCommand creates the command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{deps: deps, v: viper.New(), format: formatText}

	rootCmd := &cobra.Command{
		Use:   "easypaper",
		Short: "Compile, scaffold and navigate LaTeX papers",
		Long: `EasyPaper compiles LaTeX projects with Tectonic or latexmk, scaffolds new
papers from built-in templates and maps PDF positions to sources with SyncTeX.

Quick Start:
  easypaper new my-paper --template ieeetran
  easypaper compile my-paper
  easypaper watch my-paper
  easypaper serve                 Start the editor bridge`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "settings file (default is $XDG_CONFIG_HOME/easypaper/easypaper.yml, can also use "+configFileEnv+")")
	pf.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.VarP(newChoiceValue(&a.format, formatText, formatText, formatJSON, formatYAML), "format", "o", "output format (text, json, yaml)")
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(
		newCompileCommand(a),
		newCleanCommand(a),
		newNewCommand(a),
		newTemplateCommand(a),
		newSyncTeXCommand(a),
		newFilesCommand(a),
		newServeCommand(a),
		newWatchCommand(a),
		newInvokeCommand(a),
		newVersionCommand(a),
	)

	return rootCmd
}

// Execute runs the command tree against the real system. A failure that was
// already written to stdout as an envelope is not printed again.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(Deps{})
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// init loads settings, builds the logger and wires the services.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.readSettings(); err != nil {
		return err
	}

	settings, err := config.LoadFrom(a.v)
	if err != nil {
		return apperrors.WrapConfig(err, apperrors.ErrCodeConfigParse, "failed to load settings")
	}
	a.settings = settings

	level, err := logging.ParseLevel(settings.Log.Level)
	if err != nil {
		return err
	}
	a.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: settings.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if a.settingsFile != "" {
		a.logger.Debug(cmd.Context(), "using settings file", "path", a.settingsFile)
	}

	fsys := a.deps.FS
	if fsys == nil {
		fsys = fileaccess.NewOSFileSystem()
	}
	runner := a.deps.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	a.services = api.Services{
		Files:      fileaccess.New(fsys),
		Builder:    build.NewBuilder(build.WithRunner(runner), build.WithLogger(a.logger)),
		Scaffolder: scaffolding.NewScaffolder(fsys, a.logger),
		SyncTeX:    synctex.NewBridge(synctex.NewLocator(settings.SyncTeX.Candidates), runner, a.logger),
	}
	a.registry = api.NewDefaultRegistry(a.services, a.logger)

	return nil
}

// readSettings points viper at the settings file and environment. A missing
// default file is fine; a missing file that was asked for explicitly is not.
func (a *app) readSettings() error {
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(config.EnvKeyReplacer())
	a.v.AutomaticEnv()

	file, explicit := a.cfgFile, a.cfgFile != ""
	if !explicit {
		if env := os.Getenv(configFileEnv); env != "" {
			file, explicit = env, true
		} else {
			file = config.DefaultFile()
		}
	}
	if file == "" {
		return nil
	}

	a.v.SetConfigFile(file)
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.WrapConfig(err, apperrors.ErrCodeConfigRead, "failed to read settings file "+file)
	}

	a.settingsFile = file
	return nil
}
