package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/history"
)

func sampleEvent(id string, started time.Time) history.Event {
	return history.Event{
		SessionID:  id,
		Operation:  "run-fcfs",
		Status:     "succeeded",
		State:      "completed",
		Processes:  0,
		Segments:   3,
		StartedAt:  started,
		DurationMS: 42,
	}
}

func TestSQLiteSink_FileRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	sink, err := New("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()
	base := time.Now().Add(-time.Minute).UTC()
	if err := sink.Send(ctx, sampleEvent("s1", base)); err != nil {
		t.Fatalf("send s1: %v", err)
	}
	crashed := sampleEvent("s2", base.Add(time.Second))
	crashed.Status = "process-error"
	crashed.ExitCode = 139
	crashed.Error = "engine exited abnormally"
	crashed.Truncated = true
	if err := sink.Send(ctx, crashed); err != nil {
		t.Fatalf("send s2: %v", err)
	}

	got, err := sink.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 events, got %d", len(got))
	}
	if got[0].SessionID != "s2" || got[0].ExitCode != 139 || !got[0].Truncated || got[0].Error == "" {
		t.Fatalf("unexpected newest event: %+v", got[0])
	}
	if got[1].SessionID != "s1" || got[1].Error != "" || got[1].Segments != 3 {
		t.Fatalf("unexpected oldest event: %+v", got[1])
	}
}

func TestSQLiteSink_InMemory(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Send(context.Background(), sampleEvent("m1", time.Now().UTC())); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, err := sink.Recent(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("recent: %v %+v", err, got)
	}
}

func TestSQLiteSink_ContextCancellation(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Send(ctx, sampleEvent("c1", time.Now().UTC())); err != nil {
		t.Logf("Expected error with cancelled context: %v", err)
	}
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
