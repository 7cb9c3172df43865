// Package process runs external tools (typesetting engines, synctex) and
// captures their output.
//
// A Runner distinguishes two outcomes callers treat differently: the tool
// could not be launched at all (returned as an error), and the tool ran but
// exited non-zero (reported through Result.ExitCode, not an error).
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Command describes a single subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Result holds what a finished subprocess produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec. It imposes no timeout: the call
// blocks until the tool exits or ctx is cancelled by the caller.
type ExecRunner struct{}

// NewExecRunner returns the os/exec backed runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd and waits for it. A launch failure is returned as an
// error; a non-zero exit is reported in Result.ExitCode.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Start(); err != nil {
		return nil, err
	}

	err := c.Wait()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode == 0 {
			// Killed by a signal: ExitCode reports -1 on most platforms, but
			// never let a failed wait read as success.
			result.ExitCode = -1
		}
	}

	return result, nil
}

// LookPath reports whether name resolves to an executable, either as a path
// or through PATH.
func LookPath(name string) (string, bool) {
	p, err := exec.LookPath(name)
	if err != nil || p == "" {
		return "", false
	}
	return p, true
}
