// Package build orchestrates document compilation.
//
// A compile loads the project configuration, picks the engine strategy,
// runs the engine once as a blocking subprocess, checks for the expected PDF
// and hands the engine's output (or log file) to the diagnostics extractor.
// Success is defined as exit status zero AND the PDF existing on disk; the
// error list does not influence it.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/easypaper/easypaper/internal/diagnostics"
	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/process"
	"github.com/easypaper/easypaper/internal/project"
)

// Result is the outcome of one compile.
type Result struct {
	Success    bool                       `json:"success"`
	PDFPath    *string                    `json:"pdf_path"`
	LogPath    *string                    `json:"log_path"`
	Errors     []diagnostics.BuildError   `json:"errors"`
	Warnings   []diagnostics.BuildWarning `json:"warnings"`
	DurationMS int64                      `json:"duration_ms"`
}

// Builder runs compiles and cleans. It is safe for concurrent use.
type Builder struct {
	runner  process.Runner
	logger  logging.Logger
	gate    *Gate
	now     func() time.Time
	metrics metrics
}

// Option configures a Builder.
type Option func(*Builder)

// WithRunner replaces the subprocess runner.
func WithRunner(r process.Runner) Option {
	return func(b *Builder) { b.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithGate shares a throttle gate between builders.
func WithGate(g *Gate) Option {
	return func(b *Builder) { b.gate = g }
}

// NewBuilder creates a Builder that runs real engines unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		runner: process.NewExecRunner(),
		logger: logging.NewNopLogger(),
		gate:   NewGate(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("build")
	return b
}

// Compile builds the project in projectDir.
func (b *Builder) Compile(ctx context.Context, projectDir string) (*Result, error) {
	start := b.now()

	cfg, err := project.Load(projectDir)
	if err != nil {
		return nil, apperrors.WrapConfig(err, apperrors.ErrCodeConfigRead, "failed to load project config")
	}

	return b.compile(ctx, projectDir, cfg, start)
}

func (b *Builder) compile(ctx context.Context, projectDir string, cfg *project.Config, start time.Time) (*Result, error) {
	strategy, ok := StrategyFor(cfg.Engine.Type)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeUnknownEngine,
			fmt.Sprintf("unknown engine type: %s", cfg.Engine.Type))
	}
	loadElapsed := b.now().Sub(start)

	interval := time.Duration(cfg.Compile.MinIntervalMS) * time.Millisecond
	release, err := b.gate.Acquire(ctx, projectDir, interval)
	if err != nil {
		return nil, err
	}
	defer release()

	runStart := b.now()
	result, err := b.run(ctx, projectDir, cfg, strategy)
	if err != nil {
		b.metrics.record(nil, err)
		b.logger.Error(ctx, err, "compile failed", "project", projectDir, "engine", cfg.Engine.Type)
		return nil, err
	}
	result.DurationMS = (loadElapsed + b.now().Sub(runStart)).Milliseconds()
	b.metrics.record(result, nil)

	b.logger.Info(ctx, "compile finished",
		"project", projectDir,
		"engine", cfg.Engine.Type,
		"success", result.Success,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"duration_ms", result.DurationMS)

	return result, nil
}

func (b *Builder) run(ctx context.Context, projectDir string, cfg *project.Config, strategy Strategy) (*Result, error) {
	outDir := cfg.OutputDir(projectDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperrors.WrapIO(err, apperrors.ErrCodeDirCreate, "failed to create output directory")
	}

	cmd := strategy.Command(projectDir, cfg)
	b.logger.Debug(ctx, "running engine", "command", cmd.Name, "args", cmd.Args, "dir", cmd.Dir)

	res, err := b.runner.Run(ctx, cmd)
	if err != nil {
		return nil, apperrors.NewToolError(apperrors.ErrCodeToolLaunch,
			fmt.Sprintf("failed to execute %s", cmd.Name), err, strategy.InstallHint())
	}

	errs, warnings, logPath := strategy.Diagnostics(res, outDir, cfg)

	pdfPath := filepath.Join(outDir, cfg.Stem()+".pdf")
	pdfExists := fileExists(pdfPath)

	result := &Result{
		Success:  res.Success() && pdfExists,
		LogPath:  logPath,
		Errors:   errs,
		Warnings: warnings,
	}
	if pdfExists {
		result.PDFPath = &pdfPath
	}
	if !res.Success() {
		b.logger.Warn(ctx, nil, "engine exited with non-zero status", "exit_code", res.ExitCode)
	}

	return result, nil
}

// Stats returns a snapshot of the compiles run so far.
func (b *Builder) Stats() Stats {
	return b.metrics.snapshot()
}

// Clean removes the configured output directory. A missing directory is not an error.
func (b *Builder) Clean(ctx context.Context, projectDir string) error {
	cfg, err := project.Load(projectDir)
	if err != nil {
		return apperrors.WrapConfig(err, apperrors.ErrCodeConfigRead, "failed to load project config")
	}

	release, err := b.gate.Lock(ctx, projectDir)
	if err != nil {
		return err
	}
	defer release()

	outDir := cfg.OutputDir(projectDir)
	if !fileExists(outDir) {
		return nil
	}
	if err := os.RemoveAll(outDir); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeFileDelete, "failed to clean output directory")
	}

	b.logger.Info(ctx, "cleaned output directory", "project", projectDir, "outdir", outDir)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
