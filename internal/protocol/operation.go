package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SelectorTableVersion identifies the engine menu layout encoded below.
// Bump it whenever a selector changes or an operation is added.
const SelectorTableVersion = 1

// ExitSelector is the engine menu entry that terminates the session.
const ExitSelector = 8

var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrInvalidParameters    = errors.New("invalid parameters")
)

// Operation is one of the closed set of engine requests.
type Operation string

const (
	RunFCFS         Operation = "run-fcfs"
	RunSJF          Operation = "run-sjf"
	RunPriority     Operation = "run-priority"
	RunRoundRobin   Operation = "run-round-robin"
	RunAll          Operation = "run-all"
	ListProcesses   Operation = "list-processes"
	AddProcess      Operation = "add-process"
	ClearProcesses  Operation = "clear-processes"
	LoadSampleSet   Operation = "load-sample-set"
	RunMemoryTest   Operation = "run-memory-test"
	StartFileServer Operation = "start-file-server"
)

// selectors must match the engine menu exactly.
var selectors = map[Operation]int{
	RunMemoryTest:   1,
	RunFCFS:         2,
	RunSJF:          3,
	RunPriority:     4,
	RunRoundRobin:   5,
	RunAll:          6,
	StartFileServer: 7,
	ListProcesses:   9,
	AddProcess:      10,
	ClearProcesses:  11,
	LoadSampleSet:   12,
}

// Selector returns the numeric menu entry for op.
func Selector(op Operation) (int, error) {
	sel, ok := selectors[op]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, string(op))
	}
	return sel, nil
}

// IsScheduling reports whether op runs one or more scheduling algorithms and
// therefore accepts a submitted process set.
func (op Operation) IsScheduling() bool {
	switch op {
	case RunFCFS, RunSJF, RunPriority, RunRoundRobin, RunAll:
		return true
	}
	return false
}

// Valid reports whether op is part of the selector table.
func (op Operation) Valid() bool {
	_, ok := selectors[op]
	return ok
}

// Entry is a row of the selector table.
type Entry struct {
	Operation Operation `json:"operation"`
	Selector  int       `json:"selector"`
}

// Table returns the selector table ordered by selector.
func Table() []Entry {
	out := make([]Entry, 0, len(selectors))
	for op, sel := range selectors {
		out = append(out, Entry{Operation: op, Selector: sel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Selector < out[j].Selector })
	return out
}

// Operations returns every supported operation ordered by selector.
func Operations() []Operation {
	t := Table()
	ops := make([]Operation, len(t))
	for i, e := range t {
		ops[i] = e.Operation
	}
	return ops
}

// ParseOperation accepts the canonical name, the selector number, or one of the
// short algorithm aliases used by the CLI and HTTP API.
func ParseOperation(s string) (Operation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if op := Operation(s); op.Valid() {
		return op, nil
	}
	if op, ok := aliases[s]; ok {
		return op, nil
	}
	for op, sel := range selectors {
		if fmt.Sprint(sel) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperation, s)
}

var aliases = map[string]Operation{
	"fcfs":        RunFCFS,
	"sjf":         RunSJF,
	"priority":    RunPriority,
	"rr":          RunRoundRobin,
	"round-robin": RunRoundRobin,
	"all":         RunAll,
	"list":        ListProcesses,
	"add":         AddProcess,
	"clear":       ClearProcesses,
	"samples":     LoadSampleSet,
	"memtest":     RunMemoryTest,
	"fileserver":  StartFileServer,
}
