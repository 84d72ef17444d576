// Package retry wraps I/O boundaries (LLM, record store) in bounded exponential backoff with jitter.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxTries uint
	Initial  time.Duration
	Max      time.Duration
}

// DefaultPolicy is used at the LLM and store boundaries.
var DefaultPolicy = Policy{MaxTries: 3, Initial: 300 * time.Millisecond, Max: 2 * time.Second}

// Do runs op until it succeeds, returns a non-retryable error, or MaxTries is reached.
// onRetry, if set, is called before each sleep with the 1-based attempt that failed.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, onRetry func(attempt int, err error), op func(ctx context.Context) (T, error)) (T, error) {
	if p.MaxTries == 0 {
		p.MaxTries = 1
	}
	if retryable == nil {
		retryable = IsTransient
	}

	b := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		b.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		b.MaxInterval = p.Max
	}
	b.RandomizationFactor = 0.5

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return v, backoff.Permanent(err)
		}
		if onRetry != nil && uint(attempt) < p.MaxTries {
			onRetry(attempt, err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.MaxTries))
}

// IsTransient reports whether err looks like a timeout, a dropped connection, throttling or a 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "bad connection") ||
		strings.Contains(msg, "eof") {
		return true
	}
	return false
}
