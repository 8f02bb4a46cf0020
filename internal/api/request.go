package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

// APIError is a non-2xx response. ID and Message come from the first entry of
// the Coinbase error envelope when the body has one.
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("coinbase %d %s: %s", e.StatusCode, e.ID, e.Message)
	}
	return fmt.Sprintf("coinbase %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may succeed if sent again.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type errorEnvelope struct {
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
		apiErr.ID = env.Errors[0].ID
		if env.Errors[0].Message != "" {
			apiErr.Message = env.Errors[0].Message
		}
	}
	return apiErr
}

// parseRetryAfter accepts delay-seconds or an HTTP date. Anything else is 0.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// getJSON fetches the path built from segments and decodes it into out.
func (c *CoinbaseClient) getJSON(ctx context.Context, out any, segments ...string) error {
	body, err := c.getWithRetry(ctx, segments...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getWithRetry retries retryable API errors. Transport errors and other
// statuses are returned at once.
func (c *CoinbaseClient) getWithRetry(ctx context.Context, segments ...string) ([]byte, error) {
	wait := c.retry.backoff

	for attempt := 0; ; attempt++ {
		body, err := c.get(ctx, segments...)
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
		if attempt >= c.retry.retries {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		// Jitter to 0.5x..1.5x, then let the server's Retry-After win.
		delay := wait/2 + time.Duration(rand.Int64N(int64(wait)+1))
		delay = min(max(delay, apiErr.RetryAfter), c.retry.maxWait)

		c.logger.Debug("retrying request",
			"status", apiErr.StatusCode,
			"attempt", attempt+1,
			"wait", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

func (c *CoinbaseClient) get(ctx context.Context, segments ...string) ([]byte, error) {
	u := c.base.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, newAPIError(resp, body)
	}
	return body, nil
}
