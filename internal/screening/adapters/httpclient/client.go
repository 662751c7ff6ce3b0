// Package httpclient implements the identity and verification collaborators
// over JSON/HTTP. Every call is paced by a token bucket and guarded by a
// circuit breaker; failures come back as categorized ports.TransportError.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"caslkey/internal/screening/ports"
	"caslkey/pkg/platform/circuit"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultRate    = rate.Limit(20)
	DefaultBurst   = 5

	maxResponseBytes = 1 << 20
)

// client is the transport shared by the collaborator clients.
type client struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*client)

func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit sets the sustained requests per second and the burst size.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *client) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

func newClient(name, baseURL string, opts ...Option) *client {
	c := &client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(DefaultRate, DefaultBurst),
		breaker: circuit.New(name),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// roundTrip sends one JSON request and returns the status and body. Only
// failures below HTTP (breaker, pacing, connection, timeout) are errors here;
// callers map the status themselves.
func (c *client) roundTrip(ctx context.Context, operation, method, path string, in any) (int, []byte, error) {
	if !c.breaker.Allow() {
		return 0, nil, ports.NewTransportError(ports.ErrorUnavailable, c.name, operation, "circuit open", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, ports.NewTransportError(ports.ErrorTimeout, c.name, operation, "rate limit wait", err)
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, ports.NewTransportError(ports.ErrorInternal, c.name, operation, "encode request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, ports.NewTransportError(ports.ErrorInternal, c.name, operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return 0, nil, ports.NewTransportError(transportCategory(ctx, err), c.name, operation, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure(ctx)
		return 0, nil, ports.NewTransportError(transportCategory(ctx, err), c.name, operation, "read response", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		c.recordFailure(ctx)
	} else {
		c.recordSuccess(ctx)
	}
	return resp.StatusCode, raw, nil
}

func (c *client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "collaborator circuit opened", "collaborator", c.name)
	}
}

func (c *client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "collaborator circuit closed", "collaborator", c.name)
	}
}

func transportCategory(ctx context.Context, err error) ports.ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ports.ErrorTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ports.ErrorTimeout
	}
	return ports.ErrorUnavailable
}

// statusCategory maps a non-2xx HTTP status onto the transport taxonomy.
// 419 and 440 are the session-timeout statuses some vendors use.
func statusCategory(status int) ports.ErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ports.ErrorUnauthorized
	case status == 419 || status == 440:
		return ports.ErrorSessionExpired
	case status == http.StatusTooManyRequests:
		return ports.ErrorRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ports.ErrorTimeout
	case status >= http.StatusInternalServerError:
		return ports.ErrorUnavailable
	default:
		return ports.ErrorRejected
	}
}

// errorBody is the vendor error envelope; both fields are optional.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusError builds the TransportError for a non-2xx response.
func statusError(collaborator, operation string, status int, body []byte) error {
	msg := fmt.Sprintf("unexpected status %d", status)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Message != "":
			msg = fmt.Sprintf("%s: %s", msg, eb.Message)
		case eb.Error != "":
			msg = fmt.Sprintf("%s: %s", msg, eb.Error)
		}
	}
	return ports.NewTransportError(statusCategory(status), collaborator, operation, msg, nil)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func decode(collaborator, operation string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return ports.NewTransportError(ports.ErrorBadResponse, collaborator, operation, "malformed response", err)
	}
	return nil
}

// parseTime accepts RFC 3339 and falls back to now for missing or malformed
// values.
func parseTime(s string, now func() time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return now()
}
