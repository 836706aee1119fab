package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrAPI is wrapped by every non-200 answer from the server.
var ErrAPI = errors.New("api error")

// Client talks to the session HTTP API served by "nexus serve".
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL  string
	Timeout  time.Duration // must exceed the server's session timeout
	Logger   *slog.Logger  // Optional logger for client operations
	TLS      *TLSClientConfig
	Insecure bool // Skip TLS verification
}

// TLSClientConfig holds TLS configuration for client
type TLSClientConfig struct {
	Enabled    bool   // Enable TLS
	CACert     string // CA certificate file path
	ClientCert string // Client certificate file
	ClientKey  string // Client private key file
	ServerName string // Server name for verification
	SkipVerify bool   // Skip certificate verification
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8080/api",
		Timeout: 30 * time.Second,
	}
}

// New creates a new API client.
func New(config Config) *Client {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	transport := &http.Transport{}
	if config.TLS != nil && config.TLS.Enabled || config.Insecure {
		tlsConfig, err := setupClientTLS(config)
		if err != nil {
			config.Logger.Error("TLS setup failed", "error", err)
		} else {
			transport.TLSClientConfig = tlsConfig
		}
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		logger:  config.Logger,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// IsReachable checks if the server is running and answers the selector table.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.Operations(ctx)
	if err != nil {
		c.logger.Debug("Server unreachable", "error", err)
		return false
	}
	return true
}

// Operations returns the selector table the server speaks.
func (c *Client) Operations(ctx context.Context) (OperationsResponse, error) {
	var out OperationsResponse
	err := c.do(ctx, http.MethodGet, "/operations", nil, &out)
	return out, err
}

func (c *Client) ListProcesses(ctx context.Context) (SessionResult, error) {
	return c.session(ctx, http.MethodGet, "/processes", nil)
}

func (c *Client) AddProcess(ctx context.Context, p ProcessRecord) (SessionResult, error) {
	return c.session(ctx, http.MethodPost, "/processes", p)
}

func (c *Client) ClearProcesses(ctx context.Context) (SessionResult, error) {
	return c.session(ctx, http.MethodDelete, "/processes", nil)
}

func (c *Client) LoadSampleSet(ctx context.Context) (SessionResult, error) {
	return c.session(ctx, http.MethodPost, "/processes/samples", nil)
}

// Schedule runs one algorithm (fcfs, sjf, priority, rr or all).
func (c *Client) Schedule(ctx context.Context, algorithm string, req RunRequest) (SessionResult, error) {
	return c.session(ctx, http.MethodPost, "/schedule/"+url.PathEscape(algorithm), req)
}

func (c *Client) RunMemoryTest(ctx context.Context) (SessionResult, error) {
	return c.session(ctx, http.MethodPost, "/memory-test", nil)
}

// StartFileServer runs the engine's file server for at most timeout
// (server default when zero).
func (c *Client) StartFileServer(ctx context.Context, timeout time.Duration) (SessionResult, error) {
	var body any
	if timeout > 0 {
		body = RunRequest{Timeout: timeout.String()}
	}
	return c.session(ctx, http.MethodPost, "/file-server", body)
}

func (c *Client) session(ctx context.Context, method, path string, body any) (SessionResult, error) {
	var out SessionResult
	err := c.do(ctx, method, path, body, &out)
	if err == nil {
		c.logger.Debug("Session finished", "operation", out.Operation, "status", out.Status, "id", out.ID)
	}
	return out, err
}

// setupClientTLS configures TLS settings for HTTP client
func setupClientTLS(config Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if config.Insecure {
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig, nil
	}

	if config.TLS != nil {
		if config.TLS.SkipVerify {
			tlsConfig.InsecureSkipVerify = true
		}
		if config.TLS.ServerName != "" {
			tlsConfig.ServerName = config.TLS.ServerName
		}
		if config.TLS.CACert != "" {
			if err := loadCACert(tlsConfig, config.TLS.CACert); err != nil {
				return nil, fmt.Errorf("failed to load CA certificate: %w", err)
			}
		}
		if config.TLS.ClientCert != "" && config.TLS.ClientKey != "" {
			cert, err := tls.LoadX509KeyPair(config.TLS.ClientCert, config.TLS.ClientKey)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	return tlsConfig, nil
}

// loadCACert loads CA certificate from file and adds it to TLS config
func loadCACert(tlsConfig *tls.Config, caCertPath string) error {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("failed to parse CA certificate")
	}

	tlsConfig.RootCAs = caCertPool
	return nil
}

// do performs a request with an optional JSON body and decodes a 200 answer into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", u)
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.handleErrorResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// handleErrorResponse handles HTTP error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil || errorResp.Error == "" {
		c.logger.Error("Failed to decode error response", "status", resp.StatusCode)
		return fmt.Errorf("%w: HTTP %d", ErrAPI, resp.StatusCode)
	}

	c.logger.Error("API request failed", "error", errorResp.Error, "status", resp.StatusCode)
	return fmt.Errorf("%w: %s", ErrAPI, errorResp.Error)
}
