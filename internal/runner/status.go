package runner

import "time"

// Status is the completion status of one engine invocation.
type Status string

const (
	StatusSucceeded    Status = "succeeded"
	StatusTimedOut     Status = "timed-out"
	StatusProcessError Status = "process-error"
	StatusNotFound     Status = "not-found"
)

// Result is everything captured from one engine invocation.
type Result struct {
	Status    Status        `json:"status"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Truncated bool          `json:"truncated"`
	ExitCode  int           `json:"exit_code"`
	PID       int           `json:"pid,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// Launched reports whether a child process was actually spawned.
func (r Result) Launched() bool { return r.Status != StatusNotFound }
