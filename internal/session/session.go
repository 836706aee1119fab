// Package session drives one engine session end to end: encode the request,
// run a fresh engine process, parse what it printed.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/history"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/logger"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/metrics"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/parser"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/runner"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
)

// DefaultTimeout bounds a session when neither the request nor the
// orchestrator options set one.
const DefaultTimeout = 10 * time.Second

const historyTimeout = 5 * time.Second

// Executor runs the engine once. *runner.Runner implements it.
type Executor interface {
	Execute(ctx context.Context, lines []string, timeout time.Duration) runner.Result
}

// Request selects one operation. Processes is only meaningful for
// scheduling operations (optional set) and AddProcess (exactly one record).
// A zero Timeout uses the orchestrator default.
type Request struct {
	Op        protocol.Operation       `json:"operation"`
	Processes []schedule.ProcessRecord `json:"processes,omitempty"`
	Timeout   time.Duration            `json:"timeout,omitempty"`
}

// Result is the outcome of one session. Processes and Timeline derive only
// from this session's Stdout and are empty unless the engine ran to
// completion.
type Result struct {
	ID        string                     `json:"id"`
	Op        protocol.Operation         `json:"operation"`
	Status    runner.Status              `json:"status"`
	State     State                      `json:"state"`
	Stdout    string                     `json:"stdout"`
	Stderr    string                     `json:"stderr"`
	Processes []schedule.ProcessRecord   `json:"processes"`
	Timeline  []schedule.TimelineSegment `json:"timeline"`
	Truncated bool                       `json:"truncated"`
	ExitCode  int                        `json:"exit_code"`
	Error     string                     `json:"error,omitempty"`
	StartedAt time.Time                  `json:"started_at"`
	Duration  time.Duration              `json:"duration"`
	Err       error                      `json:"-"`
}

// OK reports whether the engine ran and exited cleanly.
func (r Result) OK() bool { return r.Status == runner.StatusSucceeded }

// Outcome is delivered by Go.
type Outcome struct {
	Result Result
	Err    error
}

// Options configures an Orchestrator. All fields are optional.
type Options struct {
	Timeout     time.Duration
	History     history.Sink
	Transcripts *logger.Transcripts
	Logger      *slog.Logger
}

// Orchestrator is the façade presentation code talks to. It keeps no state
// between sessions and is safe for concurrent use.
type Orchestrator struct {
	exec Executor
	opts Options
	log  *slog.Logger
}

func New(exec Executor, opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Orchestrator{exec: exec, opts: opts, log: l.With("component", "session")}
}

// Timeout returns the default session timeout.
func (o *Orchestrator) Timeout() time.Duration { return o.opts.Timeout }

// Execute runs one session. The returned error is non-nil only when the
// request cannot be encoded (protocol.ErrUnsupportedOperation or
// protocol.ErrInvalidParameters); engine-side faults are reported through
// Result.Status.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (Result, error) {
	lines, err := protocol.Encode(req.Op, protocol.Params{Processes: req.Processes})
	if err != nil {
		return Result{}, err
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = o.opts.Timeout
	}

	id := uuid.NewString()
	op := string(req.Op)
	tr := transitions{cur: StateIdle, observe: func(from, to State) {
		metrics.RecordStateTransition(string(from), string(to))
	}}
	log := o.log.With("session", id, "op", op)

	tr.to(StateLaunching)
	metrics.SessionStarted()
	rr := o.exec.Execute(ctx, lines, timeout)
	metrics.SessionFinished()

	res := Result{
		ID:        id,
		Op:        req.Op,
		Status:    rr.Status,
		Stdout:    rr.Stdout,
		Stderr:    rr.Stderr,
		Processes: []schedule.ProcessRecord{},
		Timeline:  []schedule.TimelineSegment{},
		Truncated: rr.Truncated,
		ExitCode:  rr.ExitCode,
		StartedAt: rr.StartedAt,
		Duration:  rr.Duration,
		Err:       rr.Err,
	}
	if rr.Err != nil {
		res.Error = rr.Err.Error()
	}

	switch {
	case !rr.Launched():
		tr.to(StateStartFailed)
	case rr.Status == runner.StatusTimedOut && rr.PID == 0:
		// deadline passed before the child could be spawned
		tr.to(StateStartFailed)
	case rr.Status == runner.StatusTimedOut:
		tr.to(StateRunning)
		tr.to(StateTimedOut)
	default:
		tr.to(StateRunning)
		tr.to(StateCompleted)
		parsed := parser.Parse(rr.Stdout)
		res.Processes = parsed.Processes
		res.Timeline = parsed.Timeline
		metrics.AddParsed(op, len(res.Processes), len(res.Timeline))
	}
	res.State = tr.cur

	metrics.ObserveSession(op, string(res.Status), res.Duration.Seconds())
	if res.Truncated {
		metrics.IncTruncated(op)
		log.Warn("engine output truncated")
	}
	log.Info("session finished",
		"status", res.Status,
		"state", res.State,
		"exit_code", res.ExitCode,
		"processes", len(res.Processes),
		"segments", len(res.Timeline),
		"duration", res.Duration,
	)

	o.record(ctx, lines, res, log)
	return res, nil
}

// Go runs Execute on its own goroutine. The channel receives exactly one
// Outcome and is then closed.
func (o *Orchestrator) Go(ctx context.Context, req Request) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := o.Execute(ctx, req)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// record forwards a finished session to the transcript files and the history
// sink. Failures here are logged and never change the result.
func (o *Orchestrator) record(ctx context.Context, lines []string, res Result, log *slog.Logger) {
	header := fmt.Sprintf("%s %s status=%s", res.StartedAt.UTC().Format(time.RFC3339Nano), res.ID, res.Status)
	if err := o.opts.Transcripts.Write(string(res.Op), header, lines, res.Stdout, res.Stderr); err != nil {
		log.Warn("transcript write failed", "error", err)
	}
	if o.opts.History == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := o.opts.History.Send(hctx, EventOf(res)); err != nil {
		log.Warn("history sink send failed", "error", err)
	}
}

// EventOf converts a result into its history record.
func EventOf(res Result) history.Event {
	return history.Event{
		SessionID:  res.ID,
		Operation:  string(res.Op),
		Status:     string(res.Status),
		State:      string(res.State),
		ExitCode:   res.ExitCode,
		Truncated:  res.Truncated,
		Processes:  len(res.Processes),
		Segments:   len(res.Timeline),
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
		Error:      res.Error,
	}
}
