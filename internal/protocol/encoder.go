package protocol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
)

// Params carries the optional structured input for an operation.
// Processes is the set submitted before a scheduling run, or the single
// record for AddProcess. An empty set lets the engine use its pre-loaded state.
type Params struct {
	Processes []schedule.ProcessRecord
}

// Encode returns the ordered input lines for op. The selector is always the
// first line and the exit selector always the last.
func Encode(op Operation, p Params) ([]string, error) {
	sel, err := Selector(op)
	if err != nil {
		return nil, err
	}
	lines := []string{strconv.Itoa(sel)}

	switch {
	case op == AddProcess:
		if len(p.Processes) != 1 {
			return nil, fmt.Errorf("%w: %s takes exactly one process, got %d", ErrInvalidParameters, op, len(p.Processes))
		}
		rec := p.Processes[0]
		if id := strings.TrimSpace(rec.ID); id == "" || strings.ContainsAny(id, " \t\r\n") {
			return nil, fmt.Errorf("%w: %s requires a single-token process id, got %q", ErrInvalidParameters, op, rec.ID)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
		}
		lines = append(lines, fmt.Sprintf("%s %d %d %d", engineID(rec.ID), rec.Arrival, rec.Burst, rec.Priority))
	case op.IsScheduling() && len(p.Processes) > 0:
		set, err := SortByArrival(p.Processes)
		if err != nil {
			return nil, err
		}
		lines = append(lines, strconv.Itoa(len(set)))
		for _, rec := range set {
			lines = append(lines, fmt.Sprintf("%d %d %d", rec.Arrival, rec.Burst, rec.Priority))
		}
	case len(p.Processes) > 0:
		return nil, fmt.Errorf("%w: %s does not accept processes", ErrInvalidParameters, op)
	}

	return append(lines, strconv.Itoa(ExitSelector)), nil
}

// Input joins encoded lines into the byte stream written to the engine.
func Input(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// SortByArrival validates the set and returns a copy ordered by ascending
// arrival. Equal arrivals keep submission order.
func SortByArrival(in []schedule.ProcessRecord) ([]schedule.ProcessRecord, error) {
	out := make([]schedule.ProcessRecord, len(in))
	copy(out, in)
	for _, rec := range out {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Arrival < out[j].Arrival })
	return out, nil
}

// engineID maps a listing-style id such as "P6" to the numeric id the engine
// reads. Anything else is passed through unchanged.
func engineID(id string) string {
	id = strings.TrimSpace(id)
	if rest, ok := strings.CutPrefix(id, "P"); ok {
		if _, err := strconv.Atoi(rest); err == nil {
			return rest
		}
	}
	return id
}
