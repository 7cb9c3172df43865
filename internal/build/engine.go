package build

import (
	"fmt"
	"path/filepath"

	"github.com/easypaper/easypaper/internal/diagnostics"
	"github.com/easypaper/easypaper/internal/process"
	"github.com/easypaper/easypaper/internal/project"
)

// Strategy knows how to invoke one engine and where its diagnostics come from.
type Strategy interface {
	// Engine is the engine this strategy implements.
	Engine() project.Engine
	// Command builds the subprocess invocation for projectDir.
	Command(projectDir string, cfg *project.Config) process.Command
	// InstallHint is appended to launch failures.
	InstallHint() string
	// Diagnostics extracts errors and warnings after the run. logPath is
	// returned only when the strategy reads a log that exists.
	Diagnostics(res *process.Result, outDir string, cfg *project.Config) (errs []diagnostics.BuildError, warnings []diagnostics.BuildWarning, logPath *string)
}

// tectonicStrategy reports diagnostics from stdout and stderr.
type tectonicStrategy struct{}

func (tectonicStrategy) Engine() project.Engine { return project.EngineTectonic }

func (tectonicStrategy) Command(projectDir string, cfg *project.Config) process.Command {
	args := []string{fmt.Sprintf("--outdir=%s", cfg.Compile.OutDir)}
	if cfg.Compile.SyncTeX {
		args = append(args, "--synctex")
	}
	args = append(args, cfg.Main)
	args = append(args, cfg.Engine.Args...)

	return process.Command{Name: "tectonic", Args: args, Dir: projectDir}
}

func (tectonicStrategy) InstallHint() string {
	return "Make sure tectonic is installed (brew install tectonic)."
}

func (tectonicStrategy) Diagnostics(res *process.Result, _ string, _ *project.Config) ([]diagnostics.BuildError, []diagnostics.BuildWarning, *string) {
	errs, warnings := diagnostics.ParseDirectOutput(res.Stdout, res.Stderr)
	return errs, warnings, nil
}

// latexmkStrategy reports diagnostics from <outdir>/<stem>.log.
type latexmkStrategy struct{}

func (latexmkStrategy) Engine() project.Engine { return project.EngineLatexmk }

func (latexmkStrategy) Command(projectDir string, cfg *project.Config) process.Command {
	args := []string{"-pdf", "-interaction=nonstopmode"}
	if cfg.Compile.SyncTeX {
		args = append(args, "-synctex=1")
	}
	if cfg.Compile.ShellEscape {
		args = append(args, "-shell-escape")
	}
	args = append(args, fmt.Sprintf("-outdir=%s", cfg.Compile.OutDir), cfg.Main)
	args = append(args, cfg.Engine.Args...)

	return process.Command{Name: "latexmk", Args: args, Dir: projectDir}
}

func (latexmkStrategy) InstallHint() string {
	return "Make sure latexmk is installed (it ships with TeX Live and MacTeX)."
}

func (latexmkStrategy) Diagnostics(_ *process.Result, outDir string, cfg *project.Config) ([]diagnostics.BuildError, []diagnostics.BuildWarning, *string) {
	logPath := filepath.Join(outDir, cfg.Stem()+".log")
	if !fileExists(logPath) {
		return []diagnostics.BuildError{}, []diagnostics.BuildWarning{}, nil
	}

	errs, warnings := diagnostics.ParseLogFile(logPath)
	return errs, warnings, &logPath
}

var strategies = map[project.Engine]Strategy{
	project.EngineTectonic: tectonicStrategy{},
	project.EngineLatexmk:  latexmkStrategy{},
}

// StrategyFor returns the strategy for engine, or false when it is unknown.
func StrategyFor(engine project.Engine) (Strategy, bool) {
	s, ok := strategies[engine]
	return s, ok
}
