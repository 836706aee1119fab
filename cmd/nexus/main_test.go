package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	osnexus "github.com/UjjwalSaini07/OS-Nexus-Studio"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/enginetest"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/pkg/client"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := buildRoot(newCommand(&out, io.Discard))
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeResult(t *testing.T, s string) client.SessionResult {
	t.Helper()
	var r client.SessionResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return r
}

func TestRootHasSubcommands(t *testing.T) {
	root := buildRoot(newCommand(io.Discard, io.Discard))
	want := []string{"list", "add", "clear", "samples", "run", "memtest", "fileserver", "ops", "serve"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing subcommand %q: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "engine", "timeout", "api-url", "json"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag --%s", flag)
		}
	}
}

func TestLocalTableAndRun(t *testing.T) {
	engine := enginetest.Write(t, enginetest.Menu)

	if _, err := execute(t, "--engine", engine, "samples"); err != nil {
		t.Fatalf("samples: %v", err)
	}
	out, err := execute(t, "--engine", engine, "--json", "run", "fcfs")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	res := decodeResult(t, out)
	want := []client.TimelineSegment{{ProcessID: "P1", Start: 0, End: 5}, {ProcessID: "P2", Start: 5, End: 8}, {ProcessID: "P3", Start: 8, End: 10}}
	if len(res.Timeline) != len(want) {
		t.Fatalf("timeline %+v", res.Timeline)
	}
	for i := range want {
		if res.Timeline[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, res.Timeline[i], want[i])
		}
	}

	if _, err := execute(t, "--engine", engine, "add", "--id", "P6", "--arrival", "3", "--burst", "4", "--priority", "2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err = execute(t, "--engine", engine, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range []string{"processes", "ARRIVAL", "P6", "succeeded"} {
		if !strings.Contains(out, s) {
			t.Fatalf("list output missing %q:\n%s", s, out)
		}
	}

	if _, err := execute(t, "--engine", engine, "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, err = execute(t, "--engine", engine, "--json", "list")
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if n := len(decodeResult(t, out).Processes); n != 0 {
		t.Fatalf("expected empty table, got %d", n)
	}
}

func TestLocalRunSubmittedSetRendersGantt(t *testing.T) {
	engine := enginetest.Write(t, enginetest.Menu)
	out, err := execute(t, "--engine", engine, "run", "fcfs", "--process", "P1:0:5:2", "--process", "P2:2:3:1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "| P1 | P2 |") || !strings.Contains(out, "makespan=8 idle=0") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	engine := enginetest.Write(t, enginetest.Menu)
	if _, err := execute(t, "--engine", engine, "run", "list"); !errors.Is(err, protocol.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
	if _, err := execute(t, "--engine", engine, "run", "defrag"); !errors.Is(err, protocol.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
	if _, err := execute(t, "--engine", engine, "run", "fcfs", "--process", "P1:x:5"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := execute(t, "--engine", engine, "add", "--id", "P1"); err == nil {
		t.Fatal("expected error for missing --burst")
	}
}

func TestEngineNotFoundFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	out, err := execute(t, "--engine", missing, "memtest")
	if !errors.Is(err, errSessionFailed) {
		t.Fatalf("expected session failure, got %v", err)
	}
	if !strings.Contains(out, client.StatusNotFound) {
		t.Fatalf("expected not-found in output:\n%s", out)
	}
}

func TestFileServerTimeoutIsNormal(t *testing.T) {
	engine := enginetest.Write(t, enginetest.Menu)
	out, err := execute(t, "--engine", engine, "--timeout", "200ms", "--json", "fileserver")
	if err != nil {
		t.Fatalf("fileserver: %v", err)
	}
	if res := decodeResult(t, out); res.Status != client.StatusTimedOut {
		t.Fatalf("status %q", res.Status)
	}
}

func TestOps(t *testing.T) {
	out, err := execute(t, "ops")
	if err != nil {
		t.Fatalf("ops: %v", err)
	}
	if !strings.Contains(out, "run-fcfs") || !strings.Contains(out, "exit selector 8") {
		t.Fatalf("unexpected ops output:\n%s", out)
	}
	out, err = execute(t, "--json", "ops")
	if err != nil {
		t.Fatalf("ops json: %v", err)
	}
	var ops client.OperationsResponse
	if err := json.Unmarshal([]byte(out), &ops); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ops.Version != protocol.SelectorTableVersion || len(ops.Operations) != 11 {
		t.Fatalf("unexpected ops: %+v", ops)
	}
}

func TestRemoteMode(t *testing.T) {
	c, err := osnexus.LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	c.Engine.Path = enginetest.Write(t, enginetest.Menu)
	s, err := osnexus.Open(c, io.Discard)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	srv := httptest.NewServer(s.Handler("/api"))
	defer srv.Close()
	api := srv.URL + "/api"

	if _, err := execute(t, "--api-url", api, "samples"); err != nil {
		t.Fatalf("remote samples: %v", err)
	}
	out, err := execute(t, "--api-url", api, "--json", "run", "priority")
	if err != nil {
		t.Fatalf("remote run: %v", err)
	}
	res := decodeResult(t, out)
	if res.Operation != string(protocol.RunPriority) || len(res.Timeline) != 3 || res.Timeline[0].ProcessID != "P2" {
		t.Fatalf("unexpected remote result: %+v", res)
	}
	if _, err := execute(t, "--api-url", api, "add", "--id", "P7", "--burst", "2"); err != nil {
		t.Fatalf("remote add: %v", err)
	}
	out, err = execute(t, "--api-url", api, "--json", "list")
	if err != nil {
		t.Fatalf("remote list: %v", err)
	}
	if n := len(decodeResult(t, out).Processes); n != 4 {
		t.Fatalf("expected 4 processes, got %d", n)
	}
	if _, err := execute(t, "--api-url", api, "ops"); err != nil {
		t.Fatalf("remote ops: %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	engine := enginetest.Write(t, enginetest.Menu)
	ctx, cancel := context.WithCancel(context.Background())
	root := buildRoot(newCommand(io.Discard, io.Discard))
	root.SetArgs([]string{"--engine", engine, "serve", "--listen", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}

	if _, err := execute(t, "--api-url", "http://127.0.0.1:1/api", "serve"); err == nil {
		t.Fatal("expected serve to reject --api-url")
	}
}

func TestParseProcess(t *testing.T) {
	cases := []struct {
		in      string
		want    schedule.ProcessRecord
		wantErr bool
	}{
		{in: "P1:0:5:2", want: schedule.ProcessRecord{ID: "P1", Arrival: 0, Burst: 5, Priority: 2}},
		{in: " P2:3:4 ", want: schedule.ProcessRecord{ID: "P2", Arrival: 3, Burst: 4}},
		{in: "P3:0:0", wantErr: true},
		{in: "P4:-1:2", wantErr: true},
		{in: ":0:2", wantErr: true},
		{in: "P5:1", wantErr: true},
		{in: "P6:1:2:3:4", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseProcess(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %+v, %v", tc.in, got, err)
		}
	}
}

func TestRenderResultRawOutput(t *testing.T) {
	var b bytes.Buffer
	renderResult(&b, client.SessionResult{
		Operation: string(protocol.RunMemoryTest),
		Status:    client.StatusProcessError,
		Stdout:    "allocated 64 blocks",
		Stderr:    "segmentation fault\n",
		Truncated: true,
		Error:     "exit status 139",
	})
	for _, s := range []string{"run-memory-test", "allocated 64 blocks\n", "output truncated", "segmentation fault", "exit status 139"} {
		if !strings.Contains(b.String(), s) {
			t.Fatalf("missing %q in:\n%s", s, b.String())
		}
	}
}
