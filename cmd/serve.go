package cmd

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/easypaper/easypaper/internal/build"
	"github.com/easypaper/easypaper/internal/server"
	"github.com/easypaper/easypaper/internal/watcher"
)

// eventBuildFinished is pushed to bridge clients after a watch-triggered compile.
const eventBuildFinished = "build_finished"

// buildEvent is the payload of eventBuildFinished.
type buildEvent struct {
	ProjectDir string        `json:"project_dir"`
	Changed    []string      `json:"changed"`
	Result     *build.Result `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func newBuildEvent(dir string, events []watcher.ChangeEvent, res *build.Result, err error) buildEvent {
	ev := buildEvent{ProjectDir: dir, Changed: make([]string, 0, len(events)), Result: res}
	for _, e := range events {
		if rel, relErr := filepath.Rel(dir, e.Path); relErr == nil {
			ev.Changed = append(ev.Changed, filepath.ToSlash(rel))
		} else {
			ev.Changed = append(ev.Changed, e.Path)
		}
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

func newServeCommand(a *app) *cobra.Command {
	var watchDirs []string

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the editor bridge server",
		Long: `Serve every operation over HTTP (POST /api/{operation}) and WebSocket
(GET /ws) for the desktop editor. Only origins listed in
server.allowed_origins may connect.

With --watch, the given projects are recompiled on change and the result
is pushed to WebSocket clients as a "build_finished" event.

Examples:
  easypaper serve
  easypaper serve --port 9000 --watch papers/icml`,
		Args: cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return validPort(a.settings.Server.Port)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			srv := server.New(a.settings.Server, a.registry, a.logger)
			srv.ReportBuildStats(a.services.Builder.Stats)

			var wg sync.WaitGroup
			watchCtx, stopWatching := context.WithCancel(ctx)
			defer func() {
				stopWatching()
				wg.Wait()
			}()

			for _, dir := range watchDirs {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				pw := a.projectWatcher(abs)
				pw.OnResult(func(projectDir string, events []watcher.ChangeEvent, res *build.Result, err error) {
					srv.Notify(eventBuildFinished, newBuildEvent(projectDir, events, res, err))
				})

				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := pw.Run(watchCtx); err != nil {
						a.logger.Error(watchCtx, err, "watcher stopped", "project", abs)
					}
				}()
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("host", "127.0.0.1", "host to bind to")
	cmd.Flags().IntP("port", "p", 7878, "port to serve on")
	cmd.Flags().StringSliceVarP(&watchDirs, "watch", "w", nil, "project directories to recompile on change")
	_ = a.v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:     "watch [dir]",
		Aliases: []string{"w"},
		Short:   "Recompile a project whenever its sources change",
		Long: `Compile the project once, then watch .tex, .bib, .sty, .cls and image files
and recompile after each burst of changes. The output directory, .easypaper/
and .git/ are ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("debounce") {
				a.settings.Watch.DebounceMS = int(debounce.Milliseconds())
			}

			var mu sync.Mutex
			report := func(res *build.Result, err error) {
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					a.logger.Error(ctx, err, "compile failed", "project", dir)
					return
				}
				if printErr := a.print(out, res, compileReport); printErr != nil {
					a.logger.Warn(ctx, printErr, "failed to print compile report")
				}
			}

			report(a.services.Builder.Compile(ctx, dir))

			pw := a.projectWatcher(dir)
			pw.OnResult(func(_ string, _ []watcher.ChangeEvent, res *build.Result, err error) {
				report(res, err)
			})
			return pw.Run(ctx)
		},
	}

	cmd.Flags().DurationVarP(&debounce, "debounce", "d", 300*time.Millisecond, "quiet period before a rebuild (overrides watch.debounce_ms)")

	return cmd
}

func (a *app) projectWatcher(dir string) *watcher.ProjectWatcher {
	delay := time.Duration(a.settings.Watch.DebounceMS) * time.Millisecond
	return watcher.NewProjectWatcher(dir, a.services.Builder, delay, a.logger)
}
