package schedule

import "fmt"

// ProcessRecord is one row of the engine's process table.
// Identifiers are opaque; the engine does not guarantee uniqueness.
type ProcessRecord struct {
	ID       string `json:"id"`
	Arrival  int    `json:"arrival"`
	Burst    int    `json:"burst"`
	Priority int    `json:"priority"`
}

func (p ProcessRecord) String() string {
	return fmt.Sprintf("%s(arrival=%d burst=%d priority=%d)", p.ID, p.Arrival, p.Burst, p.Priority)
}

// Validate reports whether the record can be submitted to the engine.
func (p ProcessRecord) Validate() error {
	if p.Arrival < 0 {
		return fmt.Errorf("process %q: arrival must be >= 0, got %d", p.ID, p.Arrival)
	}
	if p.Burst <= 0 {
		return fmt.Errorf("process %q: burst must be > 0, got %d", p.ID, p.Burst)
	}
	return nil
}

// TimelineSegment is one contiguous execution interval reported by the engine.
type TimelineSegment struct {
	ProcessID string `json:"process_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Length returns End-Start.
func (s TimelineSegment) Length() int { return s.End - s.Start }
