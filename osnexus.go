package osnexus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/config"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/history"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/history/factory"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/logger"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/metrics"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/runner"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	iapi "github.com/UjjwalSaini07/OS-Nexus-Studio/internal/server"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/session"
	ntls "github.com/UjjwalSaini07/OS-Nexus-Studio/internal/tls"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type ProcessRecord = schedule.ProcessRecord

type TimelineSegment = schedule.TimelineSegment

type Operation = protocol.Operation

type Request = session.Request

type Result = session.Result

type Status = runner.Status

type HistorySink = history.Sink

const (
	RunFCFS         = protocol.RunFCFS
	RunSJF          = protocol.RunSJF
	RunPriority     = protocol.RunPriority
	RunRoundRobin   = protocol.RunRoundRobin
	RunAll          = protocol.RunAll
	ListProcesses   = protocol.ListProcesses
	AddProcess      = protocol.AddProcess
	ClearProcesses  = protocol.ClearProcesses
	LoadSampleSet   = protocol.LoadSampleSet
	RunMemoryTest   = protocol.RunMemoryTest
	StartFileServer = protocol.StartFileServer
)

const (
	StatusSucceeded    = runner.StatusSucceeded
	StatusTimedOut     = runner.StatusTimedOut
	StatusProcessError = runner.StatusProcessError
	StatusNotFound     = runner.StatusNotFound
)

var (
	ErrUnsupportedOperation = protocol.ErrUnsupportedOperation
	ErrInvalidParameters    = protocol.ErrInvalidParameters
	ErrEngineNotFound       = runner.ErrEngineNotFound
)

func LoadConfig(path string) (*Config, error) { return config.Load(path) }

func ParseOperation(s string) (Operation, error) { return protocol.ParseOperation(s) }

// Studio is the embedded engine bridge: an orchestrator wired to the logger,
// transcripts and history sink described by a Config. All orchestrator
// operations (ListProcesses, RunFCFS, ...) are promoted from the embedded
// *session.Orchestrator.
type Studio struct {
	*session.Orchestrator
	cfg     Config
	log     *slog.Logger
	closers []io.Closer
}

// Open builds a Studio from c. Log output goes to logOut unless c.Log.File is
// set. When c.Metrics.Enabled the collectors are registered with the default
// registry. Close releases log files, transcripts and the history sink.
func Open(c *Config, logOut io.Writer) (*Studio, error) {
	if c == nil {
		return nil, errors.New("osnexus: nil config")
	}
	lc := c.Log.Logger()
	log, lclose, err := logger.New(lc, logOut)
	if err != nil {
		return nil, err
	}
	s := &Studio{cfg: *c, log: log, closers: []io.Closer{lclose}}

	spec, err := c.Engine.RunnerSpec()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	opts := session.Options{Timeout: c.Engine.Timeout, Logger: log}
	if tr := logger.NewTranscripts(lc); tr != nil {
		opts.Transcripts = tr
		s.closers = append(s.closers, tr)
	}
	if c.History.Enabled {
		sink, err := factory.NewSinkFromDSN(c.History.DSN)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("history sink: %w", err)
		}
		opts.History = sink
		if cl, ok := sink.(io.Closer); ok {
			s.closers = append(s.closers, cl)
		}
	}
	if c.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	s.Orchestrator = session.New(runner.New(spec, log), opts)
	log.Debug("studio ready", "engine", spec.Path, "timeout", s.Timeout())
	return s, nil
}

func (s *Studio) Config() Config       { return s.cfg }
func (s *Studio) Logger() *slog.Logger { return s.log }

// Handler returns the HTTP API mounted under basePath, for embedding in
// another router.
func (s *Studio) Handler(basePath string) http.Handler {
	return iapi.NewRouter(s.Orchestrator, basePath, s.log).WithMaxTimeout(s.cfg.Server.MaxTimeout).Handler()
}

// Close releases resources in reverse acquisition order.
func (s *Studio) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewHTTPServer starts a server exposing the API for s, over HTTPS when the
// studio's [server.tls] section is enabled.
func NewHTTPServer(addr, basePath string, s *Studio) (*http.Server, error) {
	if s == nil {
		return nil, errors.New("osnexus: nil studio")
	}
	tlsCfg, err := ntls.Setup(s.cfg.Server.TLS)
	if err != nil {
		return nil, err
	}
	return iapi.NewTLSServer(addr, basePath, s.Orchestrator, tlsCfg, s.cfg.Server.MaxTimeout, s.log)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// NewMetricsServer returns a server exposing /metrics from the default
// registry. The caller runs ListenAndServe and Shutdown.
func NewMetricsServer(addr string) *http.Server {
	return newMetricsServer(addr, metrics.Handler())
}

// NewMetricsServerFor is NewMetricsServer for a registry passed to
// RegisterMetrics.
func NewMetricsServerFor(addr string, g prometheus.Gatherer) *http.Server {
	return newMetricsServer(addr, metrics.HandlerFor(g))
}

func newMetricsServer(addr string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
