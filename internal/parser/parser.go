// Package parser extracts typed records from the engine's free-form output.
//
// Both extraction passes are total: a line that does not have the expected
// shape is dropped, never reported.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
)

const (
	ProcessesStart = "PROCESSES_START"
	ProcessesEnd   = "PROCESSES_END"
)

// Parsed holds both extraction results for one output text.
type Parsed struct {
	Processes []schedule.ProcessRecord
	Timeline  []schedule.TimelineSegment
}

// Parse runs table and timeline extraction over the same text.
func Parse(text string) Parsed {
	return Parsed{
		Processes: ParseProcesses(text),
		Timeline:  ParseTimeline(text),
	}
}

// ParseProcesses returns one record per well-formed "id:arrival:burst:priority"
// line between the start and end markers. Without an end marker extraction
// runs to the end of text. Only the first block is read.
func ParseProcesses(text string) []schedule.ProcessRecord {
	out := []schedule.ProcessRecord{}
	in := false
	for _, line := range lines(text) {
		line = strings.TrimSpace(line)
		if !in {
			in = line == ProcessesStart
			continue
		}
		if line == ProcessesEnd {
			break
		}
		if line == "" {
			continue
		}
		if rec, ok := parseProcessLine(line); ok {
			out = append(out, rec)
		}
	}
	return out
}

func parseProcessLine(line string) (schedule.ProcessRecord, bool) {
	parts := strings.Split(line, ":")
	if len(parts) != 4 {
		return schedule.ProcessRecord{}, false
	}
	var nums [3]int
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return schedule.ProcessRecord{}, false
		}
		nums[i] = n
	}
	return schedule.ProcessRecord{
		ID:       strings.TrimSpace(parts[0]),
		Arrival:  nums[0],
		Burst:    nums[1],
		Priority: nums[2],
	}, true
}

// timelineRe matches "<id>: <start> -> <end>" with an optional parenthesised
// annotation after the id ("P1 (Pri:2): 0 -> 5") and any trailing commentary
// ("P1: 0 -> 5 | Waiting: 0").
var timelineRe = regexp.MustCompile(`^\s*([^\s:()]+)(?:\s*\([^)]*\))?\s*:\s*(-?\d+)\s*->\s*(-?\d+)\b`)

// ParseTimeline returns a segment for every line matching the timeline shape,
// in output order. Segments whose end precedes their start are dropped.
func ParseTimeline(text string) []schedule.TimelineSegment {
	out := []schedule.TimelineSegment{}
	for _, line := range lines(text) {
		seg, ok := parseTimelineLine(line)
		if ok {
			out = append(out, seg)
		}
	}
	return out
}

func parseTimelineLine(line string) (schedule.TimelineSegment, bool) {
	m := timelineRe.FindStringSubmatch(line)
	if m == nil {
		return schedule.TimelineSegment{}, false
	}
	start, err := strconv.Atoi(m[2])
	if err != nil {
		return schedule.TimelineSegment{}, false
	}
	end, err := strconv.Atoi(m[3])
	if err != nil || end < start {
		return schedule.TimelineSegment{}, false
	}
	return schedule.TimelineSegment{ProcessID: m[1], Start: start, End: end}, true
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// lines splits text on \n, \r\n or a bare \r.
func lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(newlines.Replace(text), "\n")
}
