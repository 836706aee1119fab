package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultWaitDelay bounds how long Wait lingers on output pipes held open by
// a descendant after the engine itself has exited or been killed.
const DefaultWaitDelay = 50 * time.Millisecond

// Spec describes how to launch the engine.
type Spec struct {
	Path           string        // resolved engine executable
	WorkDir        string        // optional working dir; defaults to the engine's dir
	Env            []string      // optional environment; nil inherits the caller's
	MaxOutputBytes int           // cap per captured stream
	WaitDelay      time.Duration // see DefaultWaitDelay
}

// Runner launches one fresh engine process per Execute call. It holds no
// per-session state and is safe for concurrent use.
type Runner struct {
	spec Spec
	log  *slog.Logger
}

func New(spec Spec, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if spec.MaxOutputBytes <= 0 {
		spec.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if spec.WaitDelay <= 0 {
		spec.WaitDelay = DefaultWaitDelay
	}
	return &Runner{spec: spec, log: log}
}

// Spec returns a copy of the launch spec.
func (r *Runner) Spec() Spec { return r.spec }

// Execute writes lines to a new engine process, closes its input and waits for
// it to exit or for timeout to elapse. On timeout (or ctx cancellation) the
// engine's process group is killed and whatever output was captured so far is
// returned. Execute never leaves a child running when it returns.
func (r *Runner) Execute(ctx context.Context, lines []string, timeout time.Duration) (res Result) {
	res = Result{StartedAt: time.Now(), ExitCode: -1}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	path, err := locate(r.spec.Path)
	if err != nil {
		res.Status = StatusNotFound
		res.Err = err
		r.log.Warn("engine not found", "path", r.spec.Path, "error", err)
		return res
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// #nosec G204 -- the engine path comes from operator configuration
	cmd := exec.CommandContext(runCtx, path)
	cmd.Dir = r.spec.WorkDir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(path)
	}
	if r.spec.Env != nil {
		cmd.Env = r.spec.Env
	}
	configureSysProcAttr(cmd)
	var killed atomic.Bool
	cmd.Cancel = func() error {
		killed.Store(true)
		return killGroup(cmd)
	}
	cmd.WaitDelay = r.spec.WaitDelay

	input := ""
	if len(lines) > 0 {
		input = strings.Join(lines, "\n") + "\n"
	}
	cmd.Stdin = bytes.NewReader([]byte(input))
	stdout := newCappedBuffer(r.spec.MaxOutputBytes)
	stderr := newCappedBuffer(r.spec.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if runCtx.Err() != nil {
			res.Status = StatusTimedOut
			res.Err = fmt.Errorf("engine not started before deadline: %w", runCtx.Err())
			return res
		}
		res.Status = StatusNotFound
		res.Err = fmt.Errorf("%w: start %s: %v", ErrEngineNotFound, path, err)
		r.log.Warn("engine failed to start", "path", path, "error", err)
		return res
	}
	res.PID = cmd.Process.Pid
	r.log.Debug("engine started", "path", path, "pid", res.PID, "lines", len(lines), "timeout", timeout)

	waitErr := cmd.Wait()
	if err := reapGroup(cmd); err != nil {
		r.log.Warn("failed to kill engine process group", "pid", res.PID, "error", err)
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case killed.Load():
		res.Status = StatusTimedOut
		res.Err = fmt.Errorf("engine did not exit within %s: %w", timeout, runCtx.Err())
		r.log.Warn("engine timed out", "pid", res.PID, "timeout", timeout, "stdout_bytes", len(res.Stdout))
		if ProcessAlive(res.PID) {
			r.log.Error("engine still alive after kill", "pid", res.PID)
		}
	case waitErr == nil, errors.Is(waitErr, exec.ErrWaitDelay):
		res.Status = StatusSucceeded
	default:
		res.Status = StatusProcessError
		res.Err = fmt.Errorf("engine exited abnormally: %w", waitErr)
		r.log.Warn("engine exited abnormally", "pid", res.PID, "exit_code", res.ExitCode, "error", waitErr)
	}
	return res
}
