package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/protocol"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/schedule"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/session"
)

// Router exposes the session orchestrator over HTTP.
// Endpoints (basePath may be empty or start with '/'; no trailing slash):
//
//	GET    {basePath}/processes                 list the engine's process table
//	POST   {basePath}/processes                 body: ProcessRecord
//	DELETE {basePath}/processes                 clear the table
//	POST   {basePath}/processes/samples         load the sample set
//	POST   {basePath}/schedule/{algorithm}      body: {"processes":[...],"timeout":"2s"} (optional)
//	POST   {basePath}/memory-test
//	POST   {basePath}/file-server               body: {"timeout":"30s"} (optional)
//	GET    {basePath}/operations                selector table
//
// Engine faults (not-found, timed-out, process-error) answer 200 with the
// status in the body. Requests the encoder rejects, and timeouts above the
// router's maximum, answer 400.
type Router struct {
	orch       *session.Orchestrator
	basePath   string
	maxTimeout time.Duration
	log        *slog.Logger
}

// DefaultMaxTimeout caps the per-request timeout a caller may ask for.
const DefaultMaxTimeout = 5 * time.Minute

// writeSlack is added to the longest session when sizing write deadlines.
const writeSlack = 15 * time.Second

// NewRouter constructs a Router. Example basePath: "/api" results in
// /api/processes, /api/schedule/fcfs and so on.
func NewRouter(orch *session.Orchestrator, basePath string, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{orch: orch, basePath: sanitizeBase(basePath), log: log.With("component", "http")}
	return r.WithMaxTimeout(DefaultMaxTimeout)
}

// WithMaxTimeout sets the largest per-request timeout the router accepts.
// It never drops below the orchestrator's default timeout; d <= 0 keeps
// the current value.
func (r *Router) WithMaxTimeout(d time.Duration) *Router {
	if d <= 0 {
		return r
	}
	if r.orch != nil && r.orch.Timeout() > d {
		d = r.orch.Timeout()
	}
	r.maxTimeout = d
	return r
}

// MaxTimeout reports the largest per-request timeout accepted.
func (r *Router) MaxTimeout() time.Duration { return r.maxTimeout }

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/processes", r.handleList)
	group.POST("/processes", r.handleAdd)
	group.DELETE("/processes", r.handleClear)
	group.POST("/processes/samples", r.handleSamples)
	group.POST("/schedule/:algorithm", r.handleSchedule)
	group.POST("/memory-test", r.handleMemoryTest)
	group.POST("/file-server", r.handleFileServer)
	group.GET("/operations", r.handleOperations)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// maxTimeout caps per-request timeouts (DefaultMaxTimeout when <= 0), and the
// write deadline leaves room for a session of that length.
func NewServer(addr, basePath string, orch *session.Orchestrator, maxTimeout time.Duration, log *slog.Logger) (*http.Server, error) {
	return NewTLSServer(addr, basePath, orch, nil, maxTimeout, log)
}

// NewTLSServer is NewServer over HTTPS. A nil tlsCfg serves plain HTTP.
func NewTLSServer(addr, basePath string, orch *session.Orchestrator, tlsCfg *tls.Config, maxTimeout time.Duration, log *slog.Logger) (*http.Server, error) {
	if orch == nil {
		return nil, errors.New("server: nil orchestrator")
	}
	r := NewRouter(orch, basePath, log).WithMaxTimeout(maxTimeout)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      r.maxTimeout + writeSlack,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		var err error
		if tlsCfg != nil {
			// certificates come from TLSConfig.GetCertificate
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("http server stopped", "addr", addr, "error", err)
		}
	}()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type runBody struct {
	Processes []schedule.ProcessRecord `json:"processes"`
	Timeout   string                   `json:"timeout"`
}

type operationsResp struct {
	Version      int              `json:"version"`
	ExitSelector int              `json:"exit_selector"`
	Operations   []protocol.Entry `json:"operations"`
}

// bindOptional decodes a JSON body when one was sent.
func bindOptional(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func (r *Router) parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d > r.maxTimeout {
		return 0, fmt.Errorf("timeout %s exceeds the server maximum of %s", d, r.maxTimeout)
	}
	return d, nil
}

// respond writes a session result, mapping encoder errors to 400.
func (r *Router) respond(c *gin.Context, res session.Result, err error) {
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, protocol.ErrInvalidParameters) || errors.Is(err, protocol.ErrUnsupportedOperation) {
			code = http.StatusBadRequest
		}
		writeJSON(c, code, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (r *Router) handleList(c *gin.Context) {
	res, err := r.orch.ListProcesses(c.Request.Context())
	r.respond(c, res, err)
}

func (r *Router) handleAdd(c *gin.Context) {
	var rec schedule.ProcessRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if !isSafeID(rec.ID) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid id: allowed [A-Za-z0-9._-], 1-64 chars"})
		return
	}
	res, err := r.orch.AddProcess(c.Request.Context(), rec)
	r.respond(c, res, err)
}

func (r *Router) handleClear(c *gin.Context) {
	res, err := r.orch.ClearProcesses(c.Request.Context())
	r.respond(c, res, err)
}

func (r *Router) handleSamples(c *gin.Context) {
	res, err := r.orch.LoadSampleSet(c.Request.Context())
	r.respond(c, res, err)
}

func (r *Router) handleSchedule(c *gin.Context) {
	op, err := protocol.ParseOperation(c.Param("algorithm"))
	if err != nil || !op.IsScheduling() {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: fmt.Sprintf("unknown algorithm %q: use fcfs, sjf, priority, rr or all", c.Param("algorithm"))})
		return
	}
	var body runBody
	if err := bindOptional(c, &body); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	timeout, err := r.parseTimeout(body.Timeout)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	res, err := r.orch.Execute(c.Request.Context(), session.Request{Op: op, Processes: body.Processes, Timeout: timeout})
	r.respond(c, res, err)
}

func (r *Router) handleMemoryTest(c *gin.Context) {
	res, err := r.orch.RunMemoryTest(c.Request.Context())
	r.respond(c, res, err)
}

func (r *Router) handleFileServer(c *gin.Context) {
	var body runBody
	if err := bindOptional(c, &body); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	timeout, err := r.parseTimeout(body.Timeout)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	res, err := r.orch.StartFileServer(c.Request.Context(), timeout)
	r.respond(c, res, err)
}

func (r *Router) handleOperations(c *gin.Context) {
	writeJSON(c, http.StatusOK, operationsResp{
		Version:      protocol.SelectorTableVersion,
		ExitSelector: protocol.ExitSelector,
		Operations:   protocol.Table(),
	})
}
