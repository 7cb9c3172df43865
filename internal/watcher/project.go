package watcher

import (
	"context"
	"time"

	"github.com/easypaper/easypaper/internal/build"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/project"
)

// Compiler is the part of the build orchestrator the watcher needs.
type Compiler interface {
	Compile(ctx context.Context, projectDir string) (*build.Result, error)
}

// ResultFunc receives each compile outcome. Exactly one of res and err is nil.
type ResultFunc func(projectDir string, events []ChangeEvent, res *build.Result, err error)

// ProjectWatcher recompiles a project whenever its sources change.
type ProjectWatcher struct {
	dir      string
	compiler Compiler
	delay    time.Duration
	logger   logging.Logger
	onResult ResultFunc
}

// NewProjectWatcher creates a watcher over projectDir. A non-positive delay
// falls back to 300ms.
func NewProjectWatcher(projectDir string, compiler Compiler, delay time.Duration, logger logging.Logger) *ProjectWatcher {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ProjectWatcher{
		dir:      projectDir,
		compiler: compiler,
		delay:    delay,
		logger:   logger.WithComponent("watch"),
	}
}

// OnResult registers a callback invoked after every compile.
func (pw *ProjectWatcher) OnResult(fn ResultFunc) {
	pw.onResult = fn
}

// Run watches until ctx is cancelled.
func (pw *ProjectWatcher) Run(ctx context.Context) error {
	cfg, err := project.Load(pw.dir)
	if err != nil {
		return err
	}

	fw, err := NewFileWatcher(pw.delay, pw.logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.SetDirFilter(ProjectDirFilter(pw.dir, cfg.Compile.OutDir))
	fw.AddFilter(SourceFilter)
	fw.AddFilter(NoTempFilter)
	fw.AddHandler(func(events []ChangeEvent) error {
		pw.rebuild(ctx, events)
		return nil
	})

	if err := fw.AddRecursive(pw.dir); err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	pw.logger.Info(ctx, "watching project", "project", pw.dir, "debounce", pw.delay.String())
	<-ctx.Done()
	return nil
}

func (pw *ProjectWatcher) rebuild(ctx context.Context, events []ChangeEvent) {
	if ctx.Err() != nil {
		return
	}

	paths := make([]string, len(events))
	for i, e := range events {
		paths[i] = e.Path
	}
	pw.logger.Debug(ctx, "sources changed", "files", paths)

	res, err := pw.compiler.Compile(ctx, pw.dir)
	if err != nil {
		pw.logger.Error(ctx, err, "rebuild failed", "project", pw.dir)
	} else {
		pw.logger.Info(ctx, "rebuilt",
			"project", pw.dir,
			"success", res.Success,
			"errors", len(res.Errors),
			"warnings", len(res.Warnings),
			"duration_ms", res.DurationMS)
	}

	if pw.onResult != nil {
		pw.onResult(pw.dir, events, res, err)
	}
}
