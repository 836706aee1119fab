package session

import (
	"context"
	"time"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
)

// ListProcesses asks the engine for its current process table.
func (o *Orchestrator) ListProcesses(ctx context.Context) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.ListProcesses})
}

// AddProcess appends one record to the engine's table.
func (o *Orchestrator) AddProcess(ctx context.Context, p schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.AddProcess, Processes: []schedule.ProcessRecord{p}})
}

func (o *Orchestrator) ClearProcesses(ctx context.Context) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.ClearProcesses})
}

func (o *Orchestrator) LoadSampleSet(ctx context.Context) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.LoadSampleSet})
}

// RunFCFS and the other Run* helpers submit set when non-empty; otherwise
// the engine schedules its pre-loaded table.
func (o *Orchestrator) RunFCFS(ctx context.Context, set ...schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunFCFS, Processes: set})
}

func (o *Orchestrator) RunSJF(ctx context.Context, set ...schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunSJF, Processes: set})
}

func (o *Orchestrator) RunPriority(ctx context.Context, set ...schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunPriority, Processes: set})
}

func (o *Orchestrator) RunRoundRobin(ctx context.Context, set ...schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunRoundRobin, Processes: set})
}

func (o *Orchestrator) RunAll(ctx context.Context, set ...schedule.ProcessRecord) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunAll, Processes: set})
}

func (o *Orchestrator) RunMemoryTest(ctx context.Context) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.RunMemoryTest})
}

// StartFileServer runs the engine's blocking file server until timeout
// elapses (zero uses the default), so a normal outcome is StatusTimedOut.
func (o *Orchestrator) StartFileServer(ctx context.Context, timeout time.Duration) (Result, error) {
	return o.Execute(ctx, Request{Op: protocol.StartFileServer, Timeout: timeout})
}
