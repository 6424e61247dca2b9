package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/report"
	"github.com/buscajob/buscajob/internal/store"
)

// --- Mock implementations ---

type fakeStore struct {
	store.NopStore
	saved *model.SavedCriteria
	err   error
}

func (f *fakeStore) LatestCriteria(context.Context) (model.SavedCriteria, error) {
	if f.err != nil {
		return model.SavedCriteria{}, f.err
	}
	if f.saved == nil {
		return model.SavedCriteria{}, model.ErrNotFound
	}
	return *f.saved, nil
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls []model.SearchCriteria
	err   error
}

func (f *fakeSearcher) Run(_ context.Context, c model.SearchCriteria) ([]model.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	return []model.JobPosting{{Title: "Dev", Company: "Acme"}}, nil
}

type fakeSink struct {
	saves int
	total int
}

func (f *fakeSink) Save(_ model.SearchCriteria, postings []model.JobPosting) (string, error) {
	f.saves++
	f.total += len(postings)
	return "resultados_x.json", nil
}

type fakeReport struct {
	calls int
}

func (f *fakeReport) Generate(context.Context) (report.Result, error) {
	f.calls++
	return report.Result{File: "relatorio_fixo_x.json"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func savedCriteria() *model.SavedCriteria {
	return &model.SavedCriteria{ID: "config_1", Criteria: model.SearchCriteria{Role: "Desenvolvedor", Sites: []string{"indeed"}}}
}

// --- Tests ---

func TestCronSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "0 9 * * *", false},
		{"18:30", "30 18 * * *", false},
		{" 7:05 ", "5 7 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := cronSpec(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("cronSpec(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNew_DefaultTimes(t *testing.T) {
	s, err := New(nil, &fakeStore{}, &fakeSearcher{}, &fakeSink{}, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(s.specs) != 2 || s.specs[0] != "0 9 * * *" || s.specs[1] != "0 18 * * *" {
		t.Errorf("specs = %v", s.specs)
	}
}

func TestNew_InvalidTime(t *testing.T) {
	if _, err := New([]string{"9h"}, &fakeStore{}, &fakeSearcher{}, &fakeSink{}, discardLogger()); err == nil {
		t.Error("expected error for invalid time")
	}
}

func TestRunOnce_SkipsWithoutSavedCriteria(t *testing.T) {
	searcher := &fakeSearcher{}
	sink := &fakeSink{}
	s, _ := New(nil, &fakeStore{}, searcher, sink, discardLogger())

	s.RunOnce(context.Background())

	if len(searcher.calls) != 0 || sink.saves != 0 {
		t.Errorf("expected skip, got %d searches and %d saves", len(searcher.calls), sink.saves)
	}
}

func TestRunOnce_RunsLatestCriteria(t *testing.T) {
	searcher := &fakeSearcher{}
	sink := &fakeSink{}
	s, _ := New(nil, &fakeStore{saved: savedCriteria()}, searcher, sink, discardLogger())

	s.RunOnce(context.Background())

	if len(searcher.calls) != 1 || searcher.calls[0].Role != "Desenvolvedor" {
		t.Fatalf("calls = %+v", searcher.calls)
	}
	if sink.saves != 1 || sink.total != 1 {
		t.Errorf("sink saves=%d total=%d", sink.saves, sink.total)
	}
}

func TestRunOnce_SearchErrorSkipsSave(t *testing.T) {
	sink := &fakeSink{}
	s, _ := New(nil, &fakeStore{saved: savedCriteria()}, &fakeSearcher{err: errors.New("boom")}, sink, discardLogger())

	s.RunOnce(context.Background())

	if sink.saves != 0 {
		t.Errorf("expected no save after failed search, got %d", sink.saves)
	}
}

func TestRunOnce_StoreErrorStillRunsReport(t *testing.T) {
	rep := &fakeReport{}
	searcher := &fakeSearcher{}
	s, _ := New(nil, &fakeStore{err: errors.New("db locked")}, searcher, &fakeSink{}, discardLogger(), WithReport(rep))

	s.RunOnce(context.Background())

	if len(searcher.calls) != 0 {
		t.Errorf("expected no search, got %d", len(searcher.calls))
	}
	if rep.calls != 1 {
		t.Errorf("report calls = %d, want 1", rep.calls)
	}
}

func TestRunOnce_WithReport(t *testing.T) {
	rep := &fakeReport{}
	sink := &fakeSink{}
	s, _ := New(nil, &fakeStore{saved: savedCriteria()}, &fakeSearcher{}, sink, discardLogger(), WithReport(rep))

	s.RunOnce(context.Background())

	if sink.saves != 1 || rep.calls != 1 {
		t.Errorf("saves=%d report=%d, want 1 and 1", sink.saves, rep.calls)
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s, err := New([]string{"03:00"}, &fakeStore{}, &fakeSearcher{}, &fakeSink{}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
}
