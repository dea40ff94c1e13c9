// Package api talks JSON over HTTP to the finance backend.
//
// Every call carries its bearer token explicitly; the client never looks up
// credentials on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHost is the backend used when none is configured.
const DefaultHost = "http://localhost:8080"

// RequestError is returned when the backend cannot be reached or answers with
// a non-2xx status. StatusCode is 0 for transport failures.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	StatusText string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("API request failed: %s %s: %v", e.Method, e.Endpoint, e.Err)
	}
	return "API request failed: " + e.StatusText
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a RequestError with the given status code.
func IsStatus(err error, code int) bool {
	var rerr *RequestError
	return errors.As(err, &rerr) && rerr.StatusCode == code
}

// Client issues one HTTP request per call against a fixed backend host.
type Client struct {
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Transport: c.httpClient.Transport, Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for the backend at host.
func NewClient(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the backend base URL.
func (c *Client) Host() string { return c.host }

// Headers builds the request headers: JSON content type always, bearer
// authorization when a token is given.
func Headers(token string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// Do sends body (when non-nil) as JSON to endpoint and decodes the JSON
// response into out (when non-nil and the response has a body).
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, endpoint, err)
	}
	req.Header = Headers(token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "API request failed", "method", method, "endpoint", endpoint, "error", err)
		return &RequestError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API request completed",
		"method", method,
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, StatusText: statusText(resp), Err: err}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
