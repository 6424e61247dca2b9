package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

// Default policy for network adapters: three attempts, 1-5s randomized wait.
const (
	DefaultAttempts = 3
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 5 * time.Second
)

// RetryFetcher is a decorator that retries transient page fetch failures with
// a randomized backoff before giving up.
type RetryFetcher struct {
	inner    model.PageFetcher
	attempts int
	minDelay time.Duration
	maxDelay time.Duration
	logger   *slog.Logger
}

// NewRetryFetcher wraps a PageFetcher with retry logic. attempts counts the
// first call; each wait is drawn uniformly from [minDelay, maxDelay].
func NewRetryFetcher(inner model.PageFetcher, attempts int, minDelay, maxDelay time.Duration, logger *slog.Logger) *RetryFetcher {
	if attempts < 1 {
		attempts = 1
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RetryFetcher{
		inner:    inner,
		attempts: attempts,
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   logger,
	}
}

// FetchPage attempts the fetch, retrying on transient errors. The error of the
// final attempt is returned once all attempts are spent.
func (f *RetryFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			delay := f.backoffDelay(lastErr)
			f.logger.Warn("retrying after transient error",
				"url", url,
				"attempt", attempt,
				"max_attempts", f.attempts,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := f.inner.FetchPage(ctx, url)
		if err == nil {
			return body, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	f.logger.Error("giving up after final attempt", "url", url, "attempts", f.attempts, "error", lastErr)
	return nil, lastErr
}

// backoffDelay returns a uniform random delay in [minDelay, maxDelay].
// A Retry-After duration from an HTTP 429 takes precedence.
func (f *RetryFetcher) backoffDelay(err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}
	spread := f.maxDelay - f.minDelay
	if spread <= 0 {
		return f.minDelay
	}
	return f.minDelay + rand.N(spread+1)
}

// IsRetryable returns true if the error represents a transient failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 429 and 5xx are transient; any other status is final.
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS, etc.): retryable.
	return true
}
