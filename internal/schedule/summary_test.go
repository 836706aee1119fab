package schedule

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		rec     ProcessRecord
		wantErr bool
	}{
		{ProcessRecord{ID: "P1", Arrival: 0, Burst: 5, Priority: 2}, false},
		{ProcessRecord{ID: "P2", Arrival: -1, Burst: 5}, true},
		{ProcessRecord{ID: "P3", Arrival: 0, Burst: 0}, true},
		{ProcessRecord{ID: "P4", Arrival: 3, Burst: 1, Priority: -7}, false},
	}
	for _, c := range cases {
		err := c.rec.Validate()
		if (err != nil) != c.wantErr {
			t.Fatalf("%s: Validate() err=%v wantErr=%v", c.rec, err, c.wantErr)
		}
	}
}

func TestSummary(t *testing.T) {
	tl := []TimelineSegment{
		{"P1", 0, 5},
		{"P2", 5, 8},
		{"P1", 10, 12},
	}
	st := Summary(tl)
	if st.Segments != 3 || st.Start != 0 || st.End != 12 || st.Makespan != 12 {
		t.Fatalf("unexpected bounds: %+v", st)
	}
	if st.Busy["P1"] != 7 || st.Busy["P2"] != 3 {
		t.Fatalf("unexpected busy: %+v", st.Busy)
	}
	if st.Idle != 2 {
		t.Fatalf("idle=%d want 2", st.Idle)
	}
}

func TestSummaryOverlapping(t *testing.T) {
	// RunAll reports several algorithms over the same time axis.
	tl := []TimelineSegment{
		{"P1", 0, 5},
		{"P1", 0, 5},
		{"P2", 3, 9},
	}
	st := Summary(tl)
	if st.Idle != 0 {
		t.Fatalf("idle=%d want 0", st.Idle)
	}
	if st.Busy["P1"] != 10 {
		t.Fatalf("busy P1=%d", st.Busy["P1"])
	}
}

func TestSummaryEmpty(t *testing.T) {
	st := Summary(nil)
	if st.Segments != 0 || st.Busy == nil {
		t.Fatalf("unexpected: %+v", st)
	}
}

func TestGantt(t *testing.T) {
	got := Gantt([]TimelineSegment{{"P1", 0, 5}, {"P2", 5, 8}})
	want := "| P1 | P2 |\n0    5    8\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Gantt(nil) != "" {
		t.Fatal("empty timeline should render nothing")
	}
}
