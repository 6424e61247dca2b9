package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWait_SameHost_EnforcesMinDelay(t *testing.T) {
	limiter := NewHostRateLimiter(100*time.Millisecond, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "www.catho.com.br"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "www.catho.com.br"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 20ms for timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentHosts_NoCrossBlocking(t *testing.T) {
	limiter := NewHostRateLimiter(200*time.Millisecond, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "br.indeed.com"); err != nil {
		t.Fatalf("indeed wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "www.vagas.com.br"); err != nil {
		t.Fatalf("vagas wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected vagas wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_OverrideDelay(t *testing.T) {
	limiter := NewHostRateLimiter(5*time.Second, map[string]time.Duration{"trampos.co": 0})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "trampos.co"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected override to disable waiting, got %v", elapsed)
	}
}

func TestWait_ConcurrentWaitersAreSpaced(t *testing.T) {
	limiter := NewHostRateLimiter(50*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Wait(ctx, "www.linkedin.com")
		}()
	}
	wg.Wait()

	// Three reservations need at least two full gaps.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms for three waiters, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewHostRateLimiter(5*time.Second, nil)

	if err := limiter.Wait(context.Background(), "www.catho.com.br"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "www.catho.com.br"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingFetcher struct {
	urls []string
}

func (f *recordingFetcher) FetchPage(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return nil, nil
}

func TestRateLimitedFetcher_DelegatesAfterWait(t *testing.T) {
	inner := &recordingFetcher{}
	f := NewRateLimitedFetcher(inner, NewHostRateLimiter(10*time.Millisecond, nil))

	if _, err := f.FetchPage(context.Background(), "https://br.indeed.com/jobs?q=go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.urls) != 1 || inner.urls[0] != "https://br.indeed.com/jobs?q=go" {
		t.Errorf("inner fetcher not called with url, got %v", inner.urls)
	}
}
