package process

import (
	"context"
	"sync"
)

// FakeRunner is a Runner for tests. Handler decides the outcome of each call;
// every command is recorded in Calls.
type FakeRunner struct {
	Handler func(cmd Command) (*Result, error)

	mu    sync.Mutex
	calls []Command
}

// Run records cmd and delegates to Handler. Without a Handler every command
// succeeds with empty output.
func (f *FakeRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.Handler == nil {
		return &Result{}, nil
	}
	return f.Handler(cmd)
}

// Calls returns a copy of the recorded commands.
func (f *FakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}
