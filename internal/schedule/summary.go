package schedule

import (
	"sort"
	"strconv"
	"strings"
)

// Stats aggregates a timeline. Busy maps process id to total executed time.
type Stats struct {
	Segments int            `json:"segments"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Makespan int            `json:"makespan"`
	Idle     int            `json:"idle"`
	Busy     map[string]int `json:"busy"`
}

// Summary computes aggregate figures for a timeline. Segments are not assumed
// to be sorted or non-overlapping; Idle counts gaps between the union of
// segments inside [Start, End].
func Summary(timeline []TimelineSegment) Stats {
	st := Stats{Busy: make(map[string]int)}
	if len(timeline) == 0 {
		return st
	}
	st.Segments = len(timeline)
	st.Start = timeline[0].Start
	st.End = timeline[0].End
	for _, s := range timeline {
		if s.Start < st.Start {
			st.Start = s.Start
		}
		if s.End > st.End {
			st.End = s.End
		}
		st.Busy[s.ProcessID] += s.Length()
	}
	st.Makespan = st.End - st.Start

	sorted := append([]TimelineSegment(nil), timeline...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	covered := 0
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if s.Start <= cur.End {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		covered += cur.Length()
		cur = s
	}
	covered += cur.Length()
	st.Idle = st.Makespan - covered
	return st
}

// Gantt renders the timeline as a two-line text chart in report order,
// the same shape the engine prints after each run:
//
//	| P1 | P2 |
//	0    5    8
func Gantt(timeline []TimelineSegment) string {
	if len(timeline) == 0 {
		return ""
	}
	var bars, ticks strings.Builder
	bars.WriteString("|")
	first := strconv.Itoa(timeline[0].Start)
	ticks.WriteString(first)
	for _, s := range timeline {
		cell := " " + s.ProcessID + " "
		bars.WriteString(cell)
		bars.WriteString("|")
		end := strconv.Itoa(s.End)
		// align the end tick under the closing bar
		pad := bars.Len() - 1 - ticks.Len() - len(end) + 1
		if pad < 1 {
			pad = 1
		}
		ticks.WriteString(strings.Repeat(" ", pad))
		ticks.WriteString(end)
	}
	return bars.String() + "\n" + ticks.String() + "\n"
}
