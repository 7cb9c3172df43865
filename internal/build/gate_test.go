package build

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypaper/easypaper/internal/process"
	"github.com/easypaper/easypaper/internal/project"
)

// fakeClock advances only when the gate sleeps.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGate(clock *fakeClock) *Gate {
	g := NewGate()
	g.now = clock.Now
	g.sleep = clock.Sleep
	return g
}

func TestGate_FirstCompileDoesNotWait(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)

	release, err := g.Acquire(context.Background(), "/p", 600*time.Millisecond)
	require.NoError(t, err)
	release()

	assert.Empty(t, clock.slept)
}

func TestGate_WaitsRemainderOfInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "/p", 600*time.Millisecond)
	require.NoError(t, err)
	release()

	clock.Advance(200 * time.Millisecond)

	release, err = g.Acquire(ctx, "/p", 600*time.Millisecond)
	require.NoError(t, err)
	release()

	require.Len(t, clock.slept, 1)
	assert.Equal(t, 400*time.Millisecond, clock.slept[0])
}

func TestGate_NoWaitAfterIntervalElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)
	ctx := context.Background()

	release, _ := g.Acquire(ctx, "/p", 600*time.Millisecond)
	release()
	clock.Advance(time.Second)

	release, err := g.Acquire(ctx, "/p", 600*time.Millisecond)
	require.NoError(t, err)
	release()
	assert.Empty(t, clock.slept)
}

func TestGate_ZeroIntervalDisablesWaiting(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)

	for i := 0; i < 3; i++ {
		release, err := g.Acquire(context.Background(), "/p", 0)
		require.NoError(t, err)
		release()
	}
	assert.Empty(t, clock.slept)
}

func TestGate_ProjectsAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)
	ctx := context.Background()

	releaseA, err := g.Acquire(ctx, "/a", time.Second)
	require.NoError(t, err)
	releaseB, err := g.Acquire(ctx, "/b", time.Second)
	require.NoError(t, err, "a different project must not block")
	releaseA()
	releaseB()
	assert.Empty(t, clock.slept)
}

func TestGate_LockDoesNotRecord(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := newTestGate(clock)
	ctx := context.Background()

	release, err := g.Lock(ctx, "/p")
	require.NoError(t, err)
	release()

	release, err = g.Acquire(ctx, "/p", time.Second)
	require.NoError(t, err)
	release()
	assert.Empty(t, clock.slept)
}

func TestGate_SerializesSameProject(t *testing.T) {
	g := NewGate()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(ctx, "/p", 0)
			if err != nil {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
}

func TestGate_CancelledWhileWaitingForSlot(t *testing.T) {
	g := NewGate()

	release, err := g.Acquire(context.Background(), "/p", 0)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Acquire(ctx, "/p", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGate_CancelledDuringInterval(t *testing.T) {
	g := NewGate()

	release, err := g.Acquire(context.Background(), "/p", time.Hour)
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = g.Acquire(ctx, "/p", time.Hour)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The slot must have been given back.
	release, err = g.Acquire(context.Background(), "/p", 0)
	require.NoError(t, err)
	release()
}

func TestGate_ReleaseIsIdempotent(t *testing.T) {
	g := NewGate()
	release, err := g.Acquire(context.Background(), "/p", 0)
	require.NoError(t, err)
	release()
	release()

	release, err = g.Acquire(context.Background(), "/p", 0)
	require.NoError(t, err)
	release()
}

func TestCompile_EnforcesMinInterval(t *testing.T) {
	dir := t.TempDir()
	saveConfig(t, dir, func(c *project.Config) { c.Compile.MinIntervalMS = 600 })

	clock := &fakeClock{now: time.Unix(1000, 0)}
	runner := &process.FakeRunner{}
	b := NewBuilder(WithRunner(runner), WithGate(newTestGate(clock)))

	_, err := b.Compile(context.Background(), dir)
	require.NoError(t, err)
	_, err = b.Compile(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, runner.Calls(), 2)
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 600*time.Millisecond, clock.slept[0])
}
