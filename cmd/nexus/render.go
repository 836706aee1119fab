package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/pkg/client"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	_, _ = fmt.Fprintln(w, string(b))
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case client.StatusSucceeded:
		return okStyle
	case client.StatusTimedOut:
		return warnStyle
	default:
		return errStyle
	}
}

// renderResult prints a session for humans: a status line, the parsed
// process table, a Gantt chart with totals, and the raw output when nothing
// was parsed from it.
func renderResult(w io.Writer, r client.SessionResult) {
	_, _ = fmt.Fprintf(w, "%s %s (%s) in %s %s\n",
		headerStyle.Render(r.Operation),
		statusStyle(r.Status).Render(r.Status),
		r.State,
		r.Duration.Round(time.Millisecond),
		mutedStyle.Render("session="+r.ID))

	if len(r.Processes) > 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("processes"))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tARRIVAL\tBURST\tPRIORITY")
		for _, p := range r.Processes {
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", p.ID, p.Arrival, p.Burst, p.Priority)
		}
		_ = tw.Flush()
	}

	if len(r.Timeline) > 0 {
		tl := make([]schedule.TimelineSegment, len(r.Timeline))
		for i, s := range r.Timeline {
			tl[i] = schedule.TimelineSegment{ProcessID: s.ProcessID, Start: s.Start, End: s.End}
		}
		_, _ = fmt.Fprintln(w, headerStyle.Render("timeline"))
		_, _ = io.WriteString(w, schedule.Gantt(tl))
		_, _ = fmt.Fprintln(w, summaryLine(schedule.Summary(tl)))
	}

	if len(r.Processes) == 0 && len(r.Timeline) == 0 && strings.TrimSpace(r.Stdout) != "" {
		_, _ = io.WriteString(w, r.Stdout)
		if !strings.HasSuffix(r.Stdout, "\n") {
			_, _ = fmt.Fprintln(w)
		}
	}
	if r.Truncated {
		_, _ = fmt.Fprintln(w, warnStyle.Render("output truncated"))
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		_, _ = fmt.Fprintln(w, errStyle.Render("stderr:"))
		_, _ = fmt.Fprintln(w, s)
	}
	if r.Error != "" {
		_, _ = fmt.Fprintln(w, errStyle.Render("error: ")+r.Error)
	}
}

func summaryLine(st schedule.Stats) string {
	ids := make([]string, 0, len(st.Busy))
	for id := range st.Busy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+"="+strconv.Itoa(st.Busy[id]))
	}
	return fmt.Sprintf("makespan=%d idle=%d busy[%s]", st.Makespan, st.Idle, strings.Join(parts, " "))
}

func renderOperations(w io.Writer, ops client.OperationsResponse) {
	_, _ = fmt.Fprintf(w, "%s v%d (exit selector %d)\n", headerStyle.Render("selector table"), ops.Version, ops.ExitSelector)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SELECTOR\tOPERATION")
	for _, e := range ops.Operations {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", e.Selector, e.Operation)
	}
	_ = tw.Flush()
}
