// Package remote is the HTTP client shared by the hosted embedding adapters.
// Requests are throttled with a token bucket, and responses that signal
// overload (429, 502, 503, 504) are retried with exponential backoff.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Defaults applied by New.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultBackoff    = 250 * time.Millisecond
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Header is sent with every request.
	Header http.Header

	// RequestsPerSecond throttles requests. Zero means unlimited.
	RequestsPerSecond float64

	// MaxRetries bounds retries of overloaded responses. Negative disables them.
	MaxRetries int

	// Backoff is the first retry delay; it doubles on each attempt.
	Backoff time.Duration
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the server signalled a transient overload.
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Client sends JSON requests to one API.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	header  http.Header
	retries int
	backoff time.Duration
}

// New creates a client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff == 0 {
		opts.Backoff = DefaultBackoff
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: NewLimiter(opts.RequestsPerSecond),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		header:  opts.Header.Clone(),
		retries: opts.MaxRetries,
		backoff: opts.Backoff,
	}
}

// NewLimiter returns a token bucket allowing rps requests per second with a
// burst of one. A non-positive rps means unlimited.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 || math.IsInf(rps, 1) {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends in as JSON to path and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		err = c.post(ctx, path, body, out)
		statusErr, ok := err.(*StatusError)
		if !ok || !statusErr.Retryable() || attempt == c.retries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get requests path and reports a *StatusError unless it answers 200.
// It is not retried.
func (c *Client) Get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.applyHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) applyHeader(req *http.Request) {
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Vector converts a decoded embedding and checks its length.
func Vector(values []float64, dimensions int) ([]float32, error) {
	if len(values) != dimensions {
		return nil, fmt.Errorf("expected %d dimensions, got %d", dimensions, len(values))
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}
