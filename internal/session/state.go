package session

// State is a step of the per-session lifecycle:
//
//	Idle -> Launching -> Running -> Completed | TimedOut
//	            \-> StartFailed
//
// Only Completed output is parsed. A crashed engine still reaches Completed.
type State string

const (
	StateIdle        State = "idle"
	StateLaunching   State = "launching"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateTimedOut    State = "timed-out"
	StateStartFailed State = "start-failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateTimedOut, StateStartFailed:
		return true
	}
	return false
}

// transitions tracks one session's walk through the lifecycle and reports
// every step to observe.
type transitions struct {
	cur     State
	observe func(from, to State)
}

func (t *transitions) to(next State) {
	prev := t.cur
	t.cur = next
	if t.observe != nil {
		t.observe(prev, next)
	}
}
