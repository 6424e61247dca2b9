package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/snapshot"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSearcher returns the same postings for every query and records criteria.
type fakeSearcher struct {
	mu       sync.Mutex
	postings []model.JobPosting
	err      error
	calls    []model.SearchCriteria
}

func (f *fakeSearcher) Sites() []string { return []string{"catho", "indeed"} }

func (f *fakeSearcher) Run(_ context.Context, c model.SearchCriteria) ([]model.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.JobPosting, len(f.postings))
	copy(out, f.postings)
	return out, nil
}

type fakeNotifier struct {
	got []model.Report
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, r model.Report) error {
	f.got = append(f.got, r)
	return f.err
}

func newTestSink(t *testing.T) *snapshot.Sink {
	t.Helper()
	s, err := snapshot.New(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("snapshot.New: %v", err)
	}
	return s
}

func samplePostings() []model.JobPosting {
	return []model.JobPosting{
		{Title: "Dev", Company: "Acme", SourceSite: "Indeed", URL: model.StringPtr("https://a/1")},
		{Title: "Dev", Company: "Acme", SourceSite: "Catho", URL: model.StringPtr("https://a/1")},
		{Title: "Dev", Company: "Acme", SourceSite: "Indeed", URL: model.StringPtr("https://a/2")},
		{Title: "Dev", Company: "Acme", SourceSite: "Indeed", URL: model.StringPtr("https://a/1")},
	}
}

func TestGenerate_QueriesEveryRoleAndCity(t *testing.T) {
	searcher := &fakeSearcher{}
	g := NewGenerator(searcher, newTestSink(t), discardLogger())

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Queries != 20 || len(searcher.calls) != 20 {
		t.Fatalf("queries = %d, calls = %d, want 20", res.Queries, len(searcher.calls))
	}
	first := searcher.calls[0]
	if first.Role != "Analista de Sistemas" || first.Location != "Joinville" {
		t.Errorf("first query = %+v", first)
	}
	if strings.Join(first.ContractTypes, ",") != "CLT,PJ" || strings.Join(first.Sites, ",") != "catho,indeed" {
		t.Errorf("first query contract/sites = %v / %v", first.ContractTypes, first.Sites)
	}
	last := searcher.calls[19]
	if last.Role != "Desenvolvedor" || last.Location != "Belo Horizonte" {
		t.Errorf("last query = %+v", last)
	}
	if res.Postings == nil || res.Total != 0 {
		t.Errorf("expected empty non-nil postings, got %#v", res.Postings)
	}
	if res.EmailSent || res.EmailError != nil {
		t.Error("no notifier configured, nothing should be sent")
	}
}

func TestGenerate_DedupByTitleCompanySiteURL(t *testing.T) {
	sink := newTestSink(t)
	g := NewGenerator(&fakeSearcher{postings: samplePostings()}, sink, discardLogger(),
		WithQueries([]string{"Dev"}, []string{"Joinville", "Curitiba"}, nil))

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Total != 3 || len(res.Postings) != 3 {
		t.Errorf("total = %d, want 3 distinct (title, company, site, url)", res.Total)
	}
	if res.Queries != 2 {
		t.Errorf("queries = %d, want 2", res.Queries)
	}
	if !strings.HasPrefix(res.File, "relatorio_fixo_") {
		t.Errorf("file = %q", res.File)
	}
	if _, err := os.Stat(sink.Path(res.File)); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}

func TestGenerate_Notifies(t *testing.T) {
	sink := newTestSink(t)
	n := &fakeNotifier{}
	g := NewGenerator(&fakeSearcher{postings: samplePostings()}, sink, discardLogger(),
		WithNotifier(n), WithQueries([]string{"Dev"}, []string{"Joinville"}, nil))
	g.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.EmailSent || res.EmailError != nil {
		t.Errorf("expected sent, got %+v", res)
	}
	if len(n.got) != 1 {
		t.Fatalf("expected one notification, got %d", len(n.got))
	}
	r := n.got[0]
	if r.Subject != "BuscaJob Relatório Fixo - 2026-03-02" || r.Total != 3 || r.FilePath != sink.Path(res.File) {
		t.Errorf("unexpected report: %+v", r)
	}
	if !strings.Contains(r.Body, "Total de vagas: 3") {
		t.Errorf("body = %q", r.Body)
	}
}

func TestGenerate_NotifyFailureIsReported(t *testing.T) {
	n := &fakeNotifier{err: errors.New("smtp down")}
	g := NewGenerator(&fakeSearcher{}, newTestSink(t), discardLogger(),
		WithNotifier(n), WithQueries([]string{"Dev"}, []string{"Joinville"}, nil))

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("notification failure must not fail the report: %v", err)
	}
	if res.EmailSent || res.EmailError == nil || *res.EmailError != "smtp down" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGenerate_SearchError(t *testing.T) {
	g := NewGenerator(&fakeSearcher{err: errors.New("boom")}, newTestSink(t), discardLogger())
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	searcher := &fakeSearcher{}
	g := NewGenerator(searcher, newTestSink(t), discardLogger())

	if _, err := g.Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(searcher.calls) != 0 {
		t.Errorf("expected no queries, got %d", len(searcher.calls))
	}
}
