// Package scoring is the HTTP client of the remote summary scoring service.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/pkg/ports"
)

// Defaults of the reference scoring service.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultPath    = "/score/summary"
	DefaultTimeout = 60 * time.Second
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// StatusError is returned for a non-2xx answer of the scoring service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scoring service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("scoring service returned %d: %s", e.StatusCode, e.Body)
}

// Client posts responses to the scoring endpoint.
type Client struct {
	baseURL string
	path    string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.Scorer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithPath overrides the endpoint path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithTimeout sets the transport timeout. Expiry is reported as a scoring failure.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for baseURL, falling back to DefaultBaseURL when empty.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    DefaultPath,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	if c.path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(c.path, "/")
}

// Score posts the request and returns the JSON body of any 2xx answer.
func (c *Client) Score(ctx context.Context, req ports.ScoreRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode score request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	started := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("score request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read score response: %w", err)
	}
	c.logger.Debug("Scoring service answered", "status", res.StatusCode, "duration", time.Since(started))

	if res.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("score response is not JSON: %q", truncate(string(raw), 120))
	}
	return json.RawMessage(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
