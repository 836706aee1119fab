package client

import "time"

// ProcessRecord is one row of the engine's process table.
type ProcessRecord struct {
	ID       string `json:"id"`
	Arrival  int    `json:"arrival"`
	Burst    int    `json:"burst"`
	Priority int    `json:"priority"`
}

// TimelineSegment is one execution interval reported by a scheduling run.
type TimelineSegment struct {
	ProcessID string `json:"process_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Session statuses as reported by the server.
const (
	StatusSucceeded    = "succeeded"
	StatusTimedOut     = "timed-out"
	StatusProcessError = "process-error"
	StatusNotFound     = "not-found"
)

// SessionResult is the server's view of one engine session.
type SessionResult struct {
	ID        string            `json:"id"`
	Operation string            `json:"operation"`
	Status    string            `json:"status"`
	State     string            `json:"state"`
	Stdout    string            `json:"stdout"`
	Stderr    string            `json:"stderr"`
	Processes []ProcessRecord   `json:"processes"`
	Timeline  []TimelineSegment `json:"timeline"`
	Truncated bool              `json:"truncated"`
	ExitCode  int               `json:"exit_code"`
	Error     string            `json:"error,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}

// OK reports whether the engine ran and exited cleanly.
func (r SessionResult) OK() bool { return r.Status == StatusSucceeded }

// RunRequest is the optional body of a schedule or file-server call.
type RunRequest struct {
	Processes []ProcessRecord `json:"processes,omitempty"`
	Timeout   string          `json:"timeout,omitempty"`
}

// OperationEntry is a row of the engine selector table.
type OperationEntry struct {
	Operation string `json:"operation"`
	Selector  int    `json:"selector"`
}

// OperationsResponse describes the selector table the server speaks.
type OperationsResponse struct {
	Version      int              `json:"version"`
	ExitSelector int              `json:"exit_selector"`
	Operations   []OperationEntry `json:"operations"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
