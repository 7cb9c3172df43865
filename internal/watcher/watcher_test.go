package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestSourceFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"main.tex", true},
		{"sections/intro.TEX", true},
		{"refs.bib", true},
		{"style.sty", true},
		{"IEEEtran.cls", true},
		{"figures/plot.png", true},
		{"figures/photo.JPEG", true},
		{"figures/diagram.pdf", true},
		{"figures/diagram.svg", true},
		{"main.aux", false},
		{"main.log", false},
		{"main.synctex.gz", false},
		{"notes.txt", false},
		{"Makefile", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, SourceFilter(tc.path))
		})
	}
}

func TestNoTempFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"main.tex", true},
		{"main.tex~", false},
		{".main.tex.swp", false},
		{".main.tex.swo", false},
		{".#main.tex", false},
		{"~$paper.tex", false},
		{"4913", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoTempFilter(tc.path))
		})
	}
}

func TestProjectDirFilter(t *testing.T) {
	root := filepath.FromSlash("/papers/icml")
	filter := ProjectDirFilter(root, "out")

	testCases := []struct {
		path     string
		expected bool
	}{
		{"/papers/icml", true},
		{"/papers/icml/sections", true},
		{"/papers/icml/figures/raw", true},
		{"/papers/icml/out", false},
		{"/papers/icml/out/nested", false},
		{"/papers/icml/outline", true},
		{"/papers/icml/.easypaper", false},
		{"/papers/icml/.git", false},
		{"/papers/icml/.git/objects", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(filepath.FromSlash(tc.path)))
		})
	}
}

func TestProjectDirFilter_CustomOutDir(t *testing.T) {
	filter := ProjectDirFilter("/p", "build/pdf")
	assert.False(t, filter(filepath.FromSlash("/p/build/pdf")))
	assert.True(t, filter(filepath.FromSlash("/p/build")))
}

func newTestDebouncer(delay time.Duration) *Debouncer {
	return NewDebouncer(delay)
}

func TestDebouncer(t *testing.T) {
	debouncer := newTestDebouncer(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go debouncer.start(ctx)

	debouncer.events <- ChangeEvent{Path: "b.tex", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "a.tex", Type: EventTypeCreated}
	debouncer.events <- ChangeEvent{Path: "b.tex", Type: EventTypeDeleted}

	select {
	case batch := <-debouncer.output:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.tex", batch[0].Path)
		assert.Equal(t, "b.tex", batch[1].Path)
		assert.Equal(t, EventTypeDeleted, batch[1].Type, "latest event per path wins")
	case <-time.After(2 * time.Second):
		t.Fatal("no batch emitted")
	}
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	debouncer := newTestDebouncer(time.Millisecond)
	debouncer.flush()

	select {
	case batch := <-debouncer.output:
		t.Fatalf("unexpected batch %v", batch)
	default:
	}
}

func TestFileWatcher_AcceptsRespectsFilters(t *testing.T) {
	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	root := filepath.FromSlash("/p")
	watcher.SetDirFilter(ProjectDirFilter(root, "out"))
	watcher.AddFilter(SourceFilter)
	watcher.AddFilter(NoTempFilter)

	assert.True(t, watcher.accepts(filepath.FromSlash("/p/main.tex")))
	assert.True(t, watcher.accepts(filepath.FromSlash("/p/sections/intro.tex")))
	assert.False(t, watcher.accepts(filepath.FromSlash("/p/out/main.pdf")))
	assert.False(t, watcher.accepts(filepath.FromSlash("/p/main.log")))
	assert.False(t, watcher.accepts(filepath.FromSlash("/p/main.tex~")))
}

func TestAddRecursive_SkipsFilteredDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"sections", "out/aux", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.SetDirFilter(ProjectDirFilter(root, "out"))
	require.NoError(t, watcher.AddRecursive(root))

	watched := watcher.watcher.WatchList()
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{abs, filepath.Join(abs, "sections")}, watched)
}

func TestAddRecursive_MissingRoot(t *testing.T) {
	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Error(t, watcher.AddRecursive(filepath.Join(t.TempDir(), "missing")))
}

func TestFileWatcherStartStop(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)

	watcher.AddFilter(SourceFilter)
	require.NoError(t, watcher.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []ChangeEvent
	watcher.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, events...)
		return nil
	})

	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.tex"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	for _, e := range got {
		assert.Equal(t, "main.tex", filepath.Base(e.Path))
	}
	mu.Unlock()

	cancel()
	assert.NoError(t, watcher.Stop())
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(SourceFilter)
	require.NoError(t, watcher.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan string, 16)
	watcher.AddHandler(func(events []ChangeEvent) error {
		for _, e := range events {
			seen <- e.Path
		}
		return nil
	})
	require.NoError(t, watcher.Start(ctx))

	sub := filepath.Join(root, "chapters")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Wait until the new directory is registered before writing into it.
	require.Eventually(t, func() bool {
		for _, p := range watcher.watcher.WatchList() {
			if p == sub {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)

	target := filepath.Join(sub, "one.tex")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case p := <-seen:
			if p == target {
				return
			}
		case <-timeout:
			t.Fatal("change inside new directory was not reported")
		}
	}
}
