// Package http provides a reusable HTTP client with retry logic for
// providers that fetch algorithm catalogs from external services.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Config configures the client.
type Config struct {
	// Timeout bounds each individual request attempt.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// BaseRetryDelay is the delay before the first retry; subsequent
	// delays grow by BackoffMultiplier up to MaxRetryDelay.
	BaseRetryDelay    time.Duration
	MaxRetryDelay     time.Duration
	BackoffMultiplier float64

	// UserAgent is sent with every request when non-empty.
	UserAgent string

	// Transport overrides the underlying round tripper. This is how
	// authenticated transports (eg oauth2) are plugged in.
	Transport http.RoundTripper
}

// Client wraps http.Client with retries on transient failures. Responses
// with status 429 or 5xx are retried with exponential backoff; other
// responses are returned as-is.
type Client struct {
	client       *http.Client
	config       Config
	requestCount int64
	retryCount   int64
}

// NewClient creates a client, applying defaults for unset config fields.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.BaseRetryDelay == 0 {
		config.BaseRetryDelay = 500 * time.Millisecond
	}
	if config.MaxRetryDelay == 0 {
		config.MaxRetryDelay = 10 * time.Second
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = 2.0
	}

	return &Client{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		config: config,
	}
}

// Do executes a request, retrying transient failures. The request body, if
// any, must be provided through body so it can be replayed on retry.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error) {
	var lastErr error

	delay := c.config.BaseRetryDelay
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			atomic.AddInt64(&c.retryCount, 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.config.BackoffMultiplier)
			if delay > c.config.MaxRetryDelay {
				delay = c.config.MaxRetryDelay
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		atomic.AddInt64(&c.requestCount, 1)
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryableStatus(resp.StatusCode) && attempt < c.config.MaxRetries {
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			_ = resp.Body.Close()
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// GetJSON fetches url and decodes the JSON response body into v. Non-2xx
// responses are returned as errors carrying the status code.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, http.MethodGet, url, nil, header)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// PostJSON sends payload as JSON to url and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, http.MethodPost, url, body, header)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// RequestCount returns the total number of request attempts made.
func (c *Client) RequestCount() int64 { return atomic.LoadInt64(&c.requestCount) }

// RetryCount returns the total number of retries performed.
func (c *Client) RetryCount() int64 { return atomic.LoadInt64(&c.retryCount) }

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
