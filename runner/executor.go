package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flakescan/flakescan/types"
)

var _ Executor = (*processExecutor)(nil)

// Executor performs a single invocation of the external test runner.
// Implementations must never return an error for runner failures: timeouts,
// non-zero exits and spawn errors are all recorded on the RawRunResult so
// that one bad run cannot mask the rest of the session.
type Executor interface {
	ExecuteOnce(ctx context.Context, runIndex int) types.RawRunResult
}

// processExecutor shells out to the configured runner command.
type processExecutor struct {
	command []string
	target  string
	timeout time.Duration
	log     logrus.FieldLogger
}

// ExecutorConfig holds configuration for creating a process executor.
type ExecutorConfig struct {
	// Command is the runner argv prefix, e.g. ["python", "-m", "pytest"].
	Command []string
	// Target is the suite directory or single test file handed to the runner.
	Target string
	// Timeout bounds each invocation; the child process is killed when it
	// elapses.
	Timeout time.Duration
	Log     logrus.FieldLogger
}

// NewProcessExecutor creates an executor that invokes the external test
// runner as a synchronous subprocess.
func NewProcessExecutor(cfg ExecutorConfig) (Executor, error) {
	if cfg.Target == "" {
		return nil, fmt.Errorf("target cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("per-run timeout must be positive, got %v", cfg.Timeout)
	}
	if len(cfg.Command) == 0 {
		cfg.Command = DefaultRunnerCommand
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}

	return &processExecutor{
		command: cfg.Command,
		target:  cfg.Target,
		timeout: cfg.Timeout,
		log:     cfg.Log,
	}, nil
}

// ExecuteOnce runs the external test runner once against the target.
// The invocation is synchronous; the subprocess is terminated by the
// deadline-carrying context, so no child outlives the run.
func (e *processExecutor) ExecuteOnce(ctx context.Context, runIndex int) types.RawRunResult {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := e.buildArgs()
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := types.RawRunResult{
		RunIndex: runIndex,
		Duration: duration,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// Record the timeout ceiling, not the observed wall time, so the
		// duration signal stays comparable across timed-out runs.
		result.Passed = false
		result.TimedOut = true
		result.Duration = e.timeout
		result.Stderr = appendSentinel(result.Stderr, TimeoutSentinel)
		e.log.WithFields(logrus.Fields{"run": runIndex, "timeout": e.timeout}).Warn("run timed out")
	case runErr == nil:
		result.Passed = true
	default:
		result.Passed = false
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The runner never started (missing binary, permission denied).
			result.InvocationError = runErr.Error()
			result.Stderr = appendSentinel(result.Stderr, runErr.Error())
			e.log.WithFields(logrus.Fields{"run": runIndex, "error": runErr}).Error("failed to invoke test runner")
		}
	}

	return result
}

// buildArgs assembles [runner..., target, verbosity-flag].
func (e *processExecutor) buildArgs() []string {
	args := make([]string, 0, len(e.command)+2)
	args = append(args, e.command...)
	args = append(args, e.target, VerboseFlag)
	return args
}

func appendSentinel(existing, sentinel string) string {
	if existing == "" {
		return sentinel
	}
	return existing + "\n" + sentinel
}
