package build

import (
	"context"
	"path/filepath"
	"sync"
	"time"
)

// Gate serializes compiles per project and keeps at least the configured
// minimum interval between the end of one compile and the start of the next.
// It is the only state that outlives a single operation.
type Gate struct {
	mu       sync.Mutex
	projects map[string]*projectSlot

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type projectSlot struct {
	sem  chan struct{}
	last time.Time
}

// NewGate creates an empty gate using the wall clock.
func NewGate() *Gate {
	return &Gate{
		projects: make(map[string]*projectSlot),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Acquire blocks until projectDir may compile. The returned release func must
// be called when the compile finishes; it records the finish time.
func (g *Gate) Acquire(ctx context.Context, projectDir string, interval time.Duration) (func(), error) {
	return g.acquire(ctx, projectDir, interval, true)
}

// Lock serializes with compiles of projectDir without waiting out the
// interval or recording a finish time.
func (g *Gate) Lock(ctx context.Context, projectDir string) (func(), error) {
	return g.acquire(ctx, projectDir, 0, false)
}

func (g *Gate) acquire(ctx context.Context, projectDir string, interval time.Duration, record bool) (func(), error) {
	slot := g.slot(projectDir)

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if interval > 0 && !slot.last.IsZero() {
		if wait := slot.last.Add(interval).Sub(g.now()); wait > 0 {
			if err := g.sleep(ctx, wait); err != nil {
				<-slot.sem
				return nil, err
			}
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if record {
				slot.last = g.now()
			}
			<-slot.sem
		})
	}
	return release, nil
}

func (g *Gate) slot(projectDir string) *projectSlot {
	key := projectDir
	if abs, err := filepath.Abs(projectDir); err == nil {
		key = abs
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.projects[key]
	if !ok {
		s = &projectSlot{sem: make(chan struct{}, 1)}
		g.projects[key] = s
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
