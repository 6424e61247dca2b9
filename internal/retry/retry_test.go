package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher calls a function on each invocation, tracking call count.
type mockFetcher struct {
	calls int
	fn    func(attempt int) ([]byte, error)
}

func (m *mockFetcher) FetchPage(_ context.Context, _ string) ([]byte, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]byte, error) {
		return []byte("<html></html>"), nil
	}}

	rf := NewRetryFetcher(mock, 3, time.Millisecond, 2*time.Millisecond, discardLogger())
	got, err := rf.FetchPage(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "<html></html>" {
		t.Fatalf("unexpected body: %q", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]byte, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []byte("ok"), nil
	}}

	rf := NewRetryFetcher(mock, 3, time.Millisecond, 2*time.Millisecond, discardLogger())
	if _, err := rf.FetchPage(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]byte, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rf := NewRetryFetcher(mock, 3, time.Millisecond, 2*time.Millisecond, discardLogger())
	_, err := rf.FetchPage(context.Background(), "https://example.com")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterFinalAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]byte, error) {
		return nil, errors.New("connection reset")
	}}

	rf := NewRetryFetcher(mock, DefaultAttempts, time.Millisecond, 2*time.Millisecond, discardLogger())
	if _, err := rf.FetchPage(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error after final attempt, got nil")
	}
	if mock.calls != DefaultAttempts {
		t.Fatalf("expected %d calls, got %d", DefaultAttempts, mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]byte, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRetryFetcher(mock, 3, time.Second, 2*time.Second, discardLogger())
	_, err := rf.FetchPage(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestBackoffDelay_WithinBounds(t *testing.T) {
	rf := NewRetryFetcher(nil, 3, DefaultMinDelay, DefaultMaxDelay, discardLogger())
	for i := 0; i < 100; i++ {
		d := rf.backoffDelay(errors.New("boom"))
		if d < DefaultMinDelay || d > DefaultMaxDelay {
			t.Fatalf("delay %v outside [%v, %v]", d, DefaultMinDelay, DefaultMaxDelay)
		}
	}
}

func TestBackoffDelay_PrefersRetryAfter(t *testing.T) {
	rf := NewRetryFetcher(nil, 3, DefaultMinDelay, DefaultMaxDelay, discardLogger())
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 7 * time.Second}
	if d := rf.backoffDelay(err); d != 7*time.Second {
		t.Fatalf("expected Retry-After delay 7s, got %v", d)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"502", &model.HTTPError{StatusCode: 502}, true},
		{"403", &model.HTTPError{StatusCode: 403}, false},
		{"network", errors.New("dial tcp: timeout"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
