package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/enginetest"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/runner"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/server"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/session"
)

func newTestServer(t *testing.T, engine string) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orch := session.New(runner.New(runner.Spec{Path: engine}, nil), session.Options{Timeout: 5 * time.Second})
	ts := httptest.NewServer(server.NewRouter(orch, "/api", nil).Handler())
	t.Cleanup(ts.Close)
	return New(Config{BaseURL: ts.URL + "/api/"})
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestServer(t, enginetest.Write(t, enginetest.Menu))
	ctx := context.Background()

	if !c.IsReachable(ctx) {
		t.Fatal("server should be reachable")
	}
	ops, err := c.Operations(ctx)
	if err != nil || ops.Version != 1 || len(ops.Operations) != 11 {
		t.Fatalf("operations: %v %+v", err, ops)
	}

	if res, err := c.LoadSampleSet(ctx); err != nil || !res.OK() {
		t.Fatalf("samples: %v %+v", err, res)
	}
	if _, err := c.AddProcess(ctx, ProcessRecord{ID: "P4", Arrival: 6, Burst: 1, Priority: 4}); err != nil {
		t.Fatal(err)
	}
	res, err := c.ListProcesses(ctx)
	if err != nil || len(res.Processes) != 4 {
		t.Fatalf("list: %v %+v", err, res.Processes)
	}

	res, err = c.Schedule(ctx, "priority", RunRequest{})
	if err != nil || len(res.Timeline) != 4 {
		t.Fatalf("priority: %v %+v", err, res.Timeline)
	}
	if res.Timeline[0] != (TimelineSegment{ProcessID: "P2", Start: 2, End: 5}) {
		t.Fatalf("first segment: %+v", res.Timeline[0])
	}

	if res, err := c.RunMemoryTest(ctx); err != nil || !res.OK() {
		t.Fatalf("memtest: %v %+v", err, res)
	}
	if res, err := c.StartFileServer(ctx, 100*time.Millisecond); err != nil || res.Status != StatusTimedOut {
		t.Fatalf("fileserver: %v %+v", err, res)
	}
	if res, err := c.ClearProcesses(ctx); err != nil || !res.OK() {
		t.Fatalf("clear: %v %+v", err, res)
	}
}

func TestClientAPIError(t *testing.T) {
	c := newTestServer(t, filepath.Join(t.TempDir(), "missing"))
	_, err := c.Schedule(context.Background(), "lottery", RunRequest{})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("want ErrAPI, got %v", err)
	}
	res, err := c.ListProcesses(context.Background())
	if err != nil {
		t.Fatalf("engine faults are not API errors: %v", err)
	}
	if res.Status != StatusNotFound {
		t.Fatalf("status=%s", res.Status)
	}
}

func TestClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()
	_, err := New(Config{BaseURL: ts.URL}).ListProcesses(context.Background())
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("want ErrAPI, got %v", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	u := ts.URL
	ts.Close()
	c := New(Config{BaseURL: u, Timeout: time.Second})
	if c.IsReachable(context.Background()) {
		t.Fatal("closed server should be unreachable")
	}
}

func TestSetupClientTLS(t *testing.T) {
	cfg, err := setupClientTLS(Config{Insecure: true})
	if err != nil || !cfg.InsecureSkipVerify {
		t.Fatalf("insecure: %v %+v", err, cfg)
	}
	cfg, err = setupClientTLS(Config{TLS: &TLSClientConfig{Enabled: true, ServerName: "nexus.local"}})
	if err != nil || cfg.ServerName != "nexus.local" {
		t.Fatalf("server name: %v %+v", err, cfg)
	}
	if _, err := setupClientTLS(Config{TLS: &TLSClientConfig{Enabled: true, CACert: "/nope/ca.pem"}}); err == nil {
		t.Fatal("missing CA should fail")
	}
}
