package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/buscajob/buscajob/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleReport() model.Report {
	return model.Report{
		Subject:  "BuscaJob Relatório Fixo - 2026-03-02",
		Body:     "Total de vagas: 12",
		FilePath: "/var/buscajob/relatorio_fixo_20260302_090000.json",
		Total:    12,
	}
}

func TestSlackNotifier_Payload(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[0].Text.Text; got != "📋 BuscaJob Relatório Fixo - 2026-03-02" {
		t.Errorf("header = %q", got)
	}
	fields := payload.Blocks[1].Fields
	if fields[0].Text != "*Total de vagas:*\n12" {
		t.Errorf("total field = %q", fields[0].Text)
	}
	if fields[1].Text != "*Arquivo:*\nrelatorio_fixo_20260302_090000.json" {
		t.Errorf("file field = %q", fields[1].Text)
	}
	if payload.Blocks[3].Type != "divider" {
		t.Errorf("last block = %q, want divider", payload.Blocks[3].Type)
	}
}

func TestSlackNotifier_NoBodyNoFile(t *testing.T) {
	p := buildPayload(model.Report{Subject: "x"})
	if len(p.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(p.Blocks))
	}
	if p.Blocks[1].Fields[1].Text != "*Arquivo:*\n-" {
		t.Errorf("file field = %q", p.Blocks[1].Fields[1].Text)
	}
}

func TestSlackNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleReport()); err == nil {
		t.Error("expected error on 500")
	}
}

func TestSlackNotifier_RateLimitRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Notify() = %v, want nil after retry", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 calls, got %d", c)
	}
}

func TestSlackNotifier_RateLimitCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	go func() {
		// cancel while waiting out Retry-After
		cancel()
	}()
	if err := n.Notify(ctx, sampleReport()); err == nil {
		t.Error("expected error when cancelled")
	}
}

func TestSendTestMessage(t *testing.T) {
	rec := &recordingNotifier{}
	if err := SendTestMessage(context.Background(), rec); err != nil {
		t.Fatalf("SendTestMessage: %v", err)
	}
	if rec.calls != 1 {
		t.Errorf("calls = %d", rec.calls)
	}
}
