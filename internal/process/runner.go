/*
Package process runs external commands synchronously and reports their exit
code, stdout and stderr as a single CommandResult.

A non-zero exit code is a normal result. Run only returns an error when the
command could not be launched at all (binary missing, permission denied) or
was killed because it outlived its timeout; even then it returns a synthetic
CommandResult with ExitCode 1 and the failure text in Stderr, so callers
always have one result shape to render.
*/
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/KazanKK/dataferry/internal/outcome"
)

// waitDelay bounds how long Run waits for output pipes to close after the
// command has been killed.
const waitDelay = 2 * time.Second

// CommandResult is produced fresh by every invocation and never persisted.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Command  string
	Duration time.Duration
}

// Success reports whether the command exited with code 0.
func (r CommandResult) Success() bool { return r.ExitCode == 0 }

// Runner executes a command, args[0] being the binary, in dir (empty means
// the current directory).
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (CommandResult, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Timeout bounds each command; zero means no limit beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewExecRunner creates an ExecRunner with the given per-command timeout.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run executes args and waits for the child to exit.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (CommandResult, error) {
	cmdStr := strings.Join(args, " ")
	if len(args) == 0 {
		err := outcome.Validation("run", "empty command")
		return CommandResult{ExitCode: 1, Stderr: err.Error()}, err
	}

	execCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, args[0], args[1:]...)
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	// Grandchildren outside the group can still hold the output pipes open.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger().Debug("running command", "command", cmdStr, "dir", dir)
	start := time.Now()
	runErr := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Command:  cmdStr,
		Duration: time.Since(start),
	}

	if execCtx.Err() != nil {
		err := outcome.Execution("run", fmt.Errorf("%s: %w", cmdStr, timeoutCause(execCtx, r.Timeout)))
		return launchFailure(result, err), err
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
		// exited, but something it left behind kept the pipes open
		result.ExitCode = cmd.ProcessState.ExitCode()
	default:
		err := outcome.Execution("run", fmt.Errorf("launching %s: %w", cmdStr, runErr))
		r.logger().Error("command could not be launched", "command", cmdStr, "error", runErr)
		return launchFailure(result, err), err
	}

	r.logger().Debug("command finished", "command", cmdStr, "exit_code", result.ExitCode, "duration", result.Duration)
	return result, nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func launchFailure(result CommandResult, err error) CommandResult {
	result.ExitCode = 1
	if result.Stderr == "" {
		result.Stderr = err.Error()
	} else {
		result.Stderr = strings.TrimRight(result.Stderr, "\n") + "\n" + err.Error()
	}
	return result
}

func timeoutCause(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && timeout > 0 {
		return fmt.Errorf("timed out after %s", timeout)
	}
	return ctx.Err()
}
