package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	osnexus "github.com/UjjwalSaini07/OS-Nexus-Studio"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/pkg/client"
)

// errSessionFailed marks a session that ran but did not succeed. The
// result has already been printed when it is returned.
var errSessionFailed = errors.New("session failed")

type command struct {
	out    io.Writer
	logOut io.Writer
}

func newCommand(out, logOut io.Writer) command {
	return command{out: out, logOut: logOut}
}

// session opens a backend, runs one operation and prints the result.
// A timed-out result is accepted when timeoutOK is set.
func (c *command) session(ctx context.Context, gf GlobalFlags, op protocol.Operation, set []schedule.ProcessRecord, timeoutOK bool) error {
	b, err := openBackend(gf, c.logOut)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	res, err := b.Execute(ctx, op, set, gf.Timeout)
	if err != nil {
		return err
	}
	if gf.JSON {
		printJSON(c.out, res)
	} else {
		renderResult(c.out, res)
	}
	if res.OK() || (timeoutOK && res.Status == client.StatusTimedOut) {
		return nil
	}
	return fmt.Errorf("%w: %s", errSessionFailed, res.Status)
}

func (c *command) List(ctx context.Context, gf GlobalFlags) error {
	return c.session(ctx, gf, protocol.ListProcesses, nil, false)
}

func (c *command) Add(ctx context.Context, gf GlobalFlags, f AddFlags) error {
	rec := schedule.ProcessRecord{ID: f.ID, Arrival: f.Arrival, Burst: f.Burst, Priority: f.Priority}
	return c.session(ctx, gf, protocol.AddProcess, []schedule.ProcessRecord{rec}, false)
}

func (c *command) Clear(ctx context.Context, gf GlobalFlags) error {
	return c.session(ctx, gf, protocol.ClearProcesses, nil, false)
}

func (c *command) Samples(ctx context.Context, gf GlobalFlags) error {
	return c.session(ctx, gf, protocol.LoadSampleSet, nil, false)
}

// Run schedules with algorithm (fcfs, sjf, priority, rr, all or a canonical
// operation name), over the submitted set when one is given.
func (c *command) Run(ctx context.Context, gf GlobalFlags, algorithm string, f RunFlags) error {
	op, err := protocol.ParseOperation(algorithm)
	if err != nil {
		return err
	}
	if !op.IsScheduling() {
		return fmt.Errorf("%w: %q is not a scheduling algorithm", protocol.ErrUnsupportedOperation, algorithm)
	}
	set := make([]schedule.ProcessRecord, 0, len(f.Processes))
	for _, s := range f.Processes {
		p, err := parseProcess(s)
		if err != nil {
			return err
		}
		set = append(set, p)
	}
	return c.session(ctx, gf, op, set, false)
}

func (c *command) MemTest(ctx context.Context, gf GlobalFlags) error {
	return c.session(ctx, gf, protocol.RunMemoryTest, nil, false)
}

// FileServer runs the engine's blocking file server until --timeout.
func (c *command) FileServer(ctx context.Context, gf GlobalFlags) error {
	return c.session(ctx, gf, protocol.StartFileServer, nil, true)
}

func (c *command) Ops(ctx context.Context, gf GlobalFlags) error {
	b, err := openBackend(gf, c.logOut)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	ops, err := b.Operations(ctx)
	if err != nil {
		return err
	}
	if gf.JSON {
		printJSON(c.out, ops)
	} else {
		renderOperations(c.out, ops)
	}
	return nil
}

// Serve runs the HTTP API (and the metrics endpoint when enabled) until ctx
// is cancelled, then shuts both down gracefully.
func (c *command) Serve(ctx context.Context, gf GlobalFlags, f ServeFlags) error {
	if gf.APIUrl != "" {
		return errors.New("serve runs the engine locally; --api-url is not allowed")
	}
	cfg, err := loadConfig(gf)
	if err != nil {
		return err
	}
	if f.Listen != "" {
		cfg.Server.Listen = f.Listen
	}
	if f.BasePath != "" {
		cfg.Server.BasePath = f.BasePath
	}

	s, err := osnexus.Open(cfg, c.logOut)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	log := s.Logger()

	srv, err := osnexus.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, s)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	var msrv *http.Server
	if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
		msrv = osnexus.NewMetricsServer(cfg.Metrics.Listen)
		go func() {
			if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", "addr", cfg.Metrics.Listen, "error", err)
			}
		}()
	}
	log.Info("serving", "listen", cfg.Server.Listen, "base_path", cfg.Server.BasePath,
		"engine", cfg.Engine.Path, "tls", cfg.Server.TLS.Enabled, "metrics", cfg.Metrics.Enabled)

	<-ctx.Done()
	log.Info("shutting down")
	// sessions in flight finish within one timeout
	sctx, cancel := context.WithTimeout(context.Background(), s.Timeout()+5*time.Second)
	defer cancel()
	var errs []error
	if err := srv.Shutdown(sctx); err != nil {
		errs = append(errs, err)
	}
	if msrv != nil {
		if err := msrv.Shutdown(sctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// parseProcess reads id:arrival:burst[:priority].
func parseProcess(s string) (schedule.ProcessRecord, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 3 || len(parts) > 4 || parts[0] == "" {
		return schedule.ProcessRecord{}, fmt.Errorf("invalid process %q: want id:arrival:burst[:priority]", s)
	}
	nums := make([]int, 3)
	for i, f := range parts[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return schedule.ProcessRecord{}, fmt.Errorf("invalid process %q: %w", s, err)
		}
		nums[i] = n
	}
	p := schedule.ProcessRecord{ID: parts[0], Arrival: nums[0], Burst: nums[1], Priority: nums[2]}
	if err := p.Validate(); err != nil {
		return schedule.ProcessRecord{}, err
	}
	return p, nil
}
