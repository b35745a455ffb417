package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const waitDelay = time.Second

// Result is the captured output of a finished process
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts an executable with a literal argument vector. No shell is
// involved, so arguments are never reinterpreted.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) (Result, error)
}

// ExecRunner runs processes with os/exec
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes path with args and waits for it or for ctx to end. A non-zero
// exit yields an *exec.ExitError wrapped in the returned error, with the
// captured output still populated in Result.
func (ExecRunner) Run(ctx context.Context, path string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Bound the wait for pipes held open by orphaned grandchildren
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", path, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%s exited with status %d: %w", path, exitErr.ExitCode(), err)
		}
		return res, fmt.Errorf("failed to start %s: %w", path, err)
	}

	return res, nil
}
