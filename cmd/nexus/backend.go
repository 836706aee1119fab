package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	osnexus "github.com/UjjwalSaini07/OS-Nexus-Studio"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/pkg/client"
)

// backend runs one operation either against a local engine or through a
// remote API server. Results use the client's wire types in both cases so
// rendering does not care where the session ran.
type backend interface {
	Execute(ctx context.Context, op protocol.Operation, set []schedule.ProcessRecord, timeout time.Duration) (client.SessionResult, error)
	Operations(ctx context.Context) (client.OperationsResponse, error)
	Close() error
}

// remoteSlack is added to the session timeout so the HTTP client outlives
// the server-side session.
const remoteSlack = 15 * time.Second

func openBackend(gf GlobalFlags, logOut io.Writer) (backend, error) {
	if gf.APIUrl != "" {
		cfg := client.DefaultConfig()
		cfg.BaseURL = gf.APIUrl
		if gf.Timeout > 0 {
			cfg.Timeout = gf.Timeout + remoteSlack
		}
		return &remoteBackend{c: client.New(cfg)}, nil
	}
	c, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}
	s, err := osnexus.Open(c, logOut)
	if err != nil {
		return nil, err
	}
	return &localBackend{s: s}, nil
}

// loadConfig reads --config (defaults and NEXUS_* env when empty) and applies
// the --engine and --timeout overrides.
func loadConfig(gf GlobalFlags) (*osnexus.Config, error) {
	c, err := osnexus.LoadConfig(gf.ConfigPath)
	if err != nil {
		return nil, err
	}
	if gf.EnginePath != "" {
		p, err := filepath.Abs(gf.EnginePath)
		if err != nil {
			return nil, fmt.Errorf("engine path: %w", err)
		}
		c.Engine.Path = p
	}
	if gf.Timeout > 0 {
		c.Engine.Timeout = gf.Timeout
	}
	return c, nil
}

type localBackend struct {
	s *osnexus.Studio
}

func (b *localBackend) Execute(ctx context.Context, op protocol.Operation, set []schedule.ProcessRecord, timeout time.Duration) (client.SessionResult, error) {
	res, err := b.s.Execute(ctx, osnexus.Request{Op: op, Processes: set, Timeout: timeout})
	if err != nil {
		return client.SessionResult{}, err
	}
	return viewOf(res), nil
}

func (b *localBackend) Operations(context.Context) (client.OperationsResponse, error) {
	out := client.OperationsResponse{
		Version:      protocol.SelectorTableVersion,
		ExitSelector: protocol.ExitSelector,
	}
	for _, e := range protocol.Table() {
		out.Operations = append(out.Operations, client.OperationEntry{Operation: string(e.Operation), Selector: e.Selector})
	}
	return out, nil
}

func (b *localBackend) Close() error { return b.s.Close() }

type remoteBackend struct {
	c *client.Client
}

func (b *remoteBackend) Execute(ctx context.Context, op protocol.Operation, set []schedule.ProcessRecord, timeout time.Duration) (client.SessionResult, error) {
	var d string
	if timeout > 0 {
		d = timeout.String()
	}
	switch {
	case op.IsScheduling():
		return b.c.Schedule(ctx, string(op), client.RunRequest{Processes: wireRecords(set), Timeout: d})
	case op == protocol.ListProcesses:
		return b.c.ListProcesses(ctx)
	case op == protocol.AddProcess:
		if len(set) != 1 {
			return client.SessionResult{}, fmt.Errorf("%w: add needs exactly one process", protocol.ErrInvalidParameters)
		}
		return b.c.AddProcess(ctx, wireRecords(set)[0])
	case op == protocol.ClearProcesses:
		return b.c.ClearProcesses(ctx)
	case op == protocol.LoadSampleSet:
		return b.c.LoadSampleSet(ctx)
	case op == protocol.RunMemoryTest:
		return b.c.RunMemoryTest(ctx)
	case op == protocol.StartFileServer:
		return b.c.StartFileServer(ctx, timeout)
	}
	return client.SessionResult{}, fmt.Errorf("%w: %q", protocol.ErrUnsupportedOperation, string(op))
}

func (b *remoteBackend) Operations(ctx context.Context) (client.OperationsResponse, error) {
	return b.c.Operations(ctx)
}

func (b *remoteBackend) Close() error { return nil }

func wireRecords(set []schedule.ProcessRecord) []client.ProcessRecord {
	if len(set) == 0 {
		return nil
	}
	out := make([]client.ProcessRecord, len(set))
	for i, p := range set {
		out[i] = client.ProcessRecord{ID: p.ID, Arrival: p.Arrival, Burst: p.Burst, Priority: p.Priority}
	}
	return out
}

func viewOf(r osnexus.Result) client.SessionResult {
	v := client.SessionResult{
		ID:        r.ID,
		Operation: string(r.Op),
		Status:    string(r.Status),
		State:     string(r.State),
		Stdout:    r.Stdout,
		Stderr:    r.Stderr,
		Processes: wireRecords(r.Processes),
		Truncated: r.Truncated,
		ExitCode:  r.ExitCode,
		Error:     r.Error,
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
	}
	for _, s := range r.Timeline {
		v.Timeline = append(v.Timeline, client.TimelineSegment{ProcessID: s.ProcessID, Start: s.Start, End: s.End})
	}
	return v
}
