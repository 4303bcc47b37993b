// Package webhook reports finished trials to a callback URL.
package webhook

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
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

// DefaultTimeout bounds a single callback.
const DefaultTimeout = 10 * time.Second

// StatusError is returned when the callback answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook %s returned %d", e.URL, e.StatusCode)
}

// Notifier implements ports.HostRunner by POSTing the result as JSON.
type Notifier struct {
	url     string
	headers http.Header
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.HostRunner = (*Notifier)(nil)

// Option configures a Notifier.
type Option func(*Notifier)

// WithHeader adds a header to every callback, e.g. an authorization token.
func WithHeader(key, value string) Option {
	return func(n *Notifier) {
		n.headers.Add(key, value)
	}
}

// WithTimeout sets the callback timeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		n.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(n *Notifier) {
		n.http = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a Notifier posting to url.
func New(url string, opts ...Option) *Notifier {
	n := &Notifier{
		url:     url,
		headers: make(http.Header),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FinishTrial posts the result. Any 2xx answer is a success.
func (n *Notifier) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode trial result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	for k, vs := range n.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode/100 != 2 {
		return &StatusError{URL: redact(n.url), StatusCode: res.StatusCode}
	}
	n.logger.Info("Trial result delivered", "trial_id", result.TrialID, "status", res.StatusCode)
	return nil
}

// redact drops the query string, which may carry credentials.
func redact(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
