package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 4096

// StatusError is a non-2xx/3xx upstream response.
type StatusError struct {
	Code int
	Body string
	// RetryAfter is the parsed Retry-After header, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Do sends req and turns responses with status >= 400 into *StatusError.
// The caller owns the returned body.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{
			Code:       resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return resp, nil
}

// RetryPolicy bounds DoWithRetry.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff is the first wait; it doubles after every failed attempt.
	Backoff time.Duration
	// MaxRetryAfter caps how long a server may ask us to wait. A longer
	// Retry-After ends the retries with the upstream error.
	MaxRetryAfter time.Duration
	// Sleep waits d or until ctx ends. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:   4,
	Backoff:       200 * time.Millisecond,
	MaxRetryAfter: 5 * time.Second,
}

// DoWithRetry retries network errors, 429 and 5xx responses. makeReq is
// called once per attempt so every attempt gets a fresh request.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	policy RetryPolicy,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	backoff := policy.Backoff

	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := Do(client, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		wait, retry := retryDelay(err, backoff, policy.MaxRetryAfter)
		if !retry || attempt == policy.MaxAttempts {
			return nil, lastErr
		}

		log.Printf("httpx: retrying host=%s attempt=%d wait=%s err=%v", req.URL.Host, attempt, wait, err)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}

		backoff *= 2
	}

	return nil, lastErr
}

// retryDelay decides whether err is transient and how long to wait.
func retryDelay(err error, backoff, maxRetryAfter time.Duration) (time.Duration, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			if se.RetryAfter > 0 {
				if maxRetryAfter > 0 && se.RetryAfter > maxRetryAfter {
					return 0, false
				}
				return max(se.RetryAfter, backoff), true
			}
			return backoff, true
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
			return backoff, true
		}
		return 0, false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return backoff, true
	}

	return 0, false
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	t, err := http.ParseTime(v)
	if err != nil {
		return 0
	}
	if d := t.Sub(now); d > 0 {
		return d
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
