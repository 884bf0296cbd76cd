/**
 * @description
 * This package provides the resilient HTTP client shared by the identity and
 * buyer-registry clients. It performs a single logical HTTP operation under a
 * fixed timeout and retries transient failures (network errors and 5xx
 * responses) with exponential backoff and jitter.
 *
 * @dependencies
 * - github.com/cenkalti/backoff/v4: Exponential backoff with jitter and
 *   bounded retry counts.
 * - github.com/fiap/signup-service/pkg/correlation: Correlation header
 *   injection on every outbound request.
 *
 * @notes
 * - Non-5xx HTTP errors are never retried here. A 409 is a domain-level
 *   conflict the caller must resolve with a compensating read, not a
 *   transport failure to replay.
 * - Exhausting retries surfaces the last failure unchanged: callers still
 *   see the final status code on the returned *StatusError.
 */
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fiap/signup-service/pkg/correlation"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// Config holds the retry and timeout policy for a Client.
type Config struct {
	// Timeout bounds each individual attempt. Exceeding it counts as a
	// transient failure eligible for retry.
	Timeout time.Duration
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry; it doubles on each
	// subsequent attempt with random jitter.
	InitialBackoff time.Duration
}

// Client executes HTTP operations with bounded retries. It is stateless per
// invocation and safe for concurrent use.
type Client struct {
	http           *http.Client
	maxAttempts    int
	initialBackoff time.Duration
}

// Response is the decoded outcome of a successful (non-error-status) call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for any HTTP error status. It preserves the status
// code so callers can branch on domain-level signals like 409 or 403.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// New creates a Client, filling in defaults for any zero config values.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	return &Client{
		http:           &http.Client{Timeout: cfg.Timeout},
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

// Do performs one logical HTTP operation. The correlation id on ctx is
// injected as the X-Request-ID header on every attempt. Statuses below 400
// return a Response; 5xx and transport errors are retried up to the
// configured bound; other statuses return a *StatusError immediately.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*Response, error) {
	operation := func() (*Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create http request: %w", err))
		}
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		if corrID := correlation.FromContext(ctx); corrID != "" {
			req.Header.Set(correlation.Header, corrID)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, backoff.Permanent(error(&StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}))
		}

		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
	}

	return backoff.RetryWithData(operation, backoff.WithContext(c.newBackOff(), ctx))
}

func (c *Client) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1))
}
