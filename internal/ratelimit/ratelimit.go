package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

// HostRateLimiter spaces out requests to the same job site host. Callers
// reserve the next free slot under the lock, so concurrent waiters for one
// host never fire together.
type HostRateLimiter struct {
	mu        sync.Mutex
	nextSlot  map[string]time.Time // key: host
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewHostRateLimiter creates a limiter enforcing minDelay between requests to
// the same host. overrides replaces minDelay for specific hosts.
func NewHostRateLimiter(minDelay time.Duration, overrides map[string]time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		nextSlot:  make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (r *HostRateLimiter) delayFor(host string) time.Duration {
	if d, ok := r.overrides[host]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until the caller's reserved slot for host arrives.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	now := time.Now()
	slot := now
	if next, ok := r.nextSlot[host]; ok && next.After(now) {
		slot = next
	}
	r.nextSlot[host] = slot.Add(r.delayFor(host))
	r.mu.Unlock()

	remaining := time.Until(slot)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-time.After(remaining):
		return nil
	}
}

// RateLimitedFetcher is a decorator that waits on the host's slot before
// delegating to the wrapped PageFetcher. Fetchers for sites sharing a host
// should share one limiter.
type RateLimitedFetcher struct {
	inner   model.PageFetcher
	limiter *HostRateLimiter
}

// NewRateLimitedFetcher wraps a PageFetcher with host-level rate limiting.
func NewRateLimitedFetcher(inner model.PageFetcher, limiter *HostRateLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{inner: inner, limiter: limiter}
}

// FetchPage waits for the limiter, then delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	if err := f.limiter.Wait(ctx, host); err != nil {
		return nil, err
	}
	return f.inner.FetchPage(ctx, rawURL)
}
