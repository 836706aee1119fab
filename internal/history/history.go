package history

import (
	"context"
	"time"
)

// Event is one finished engine session, exported to external systems.
type Event struct {
	SessionID  string    `json:"session_id"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	State      string    `json:"state"`
	ExitCode   int       `json:"exit_code"`
	Truncated  bool      `json:"truncated"`
	Processes  int       `json:"processes"`
	Segments   int       `json:"segments"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// DefaultTable is the table (or index) name used when a DSN does not name one.
const DefaultTable = "session_history"

// Sink is a destination for history events (analytics/statistics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Nullable returns nil for an empty error string so SQL sinks store NULL.
func Nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
