package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/buscajob/buscajob/internal/config"
	"github.com/buscajob/buscajob/internal/notifier"
	"github.com/buscajob/buscajob/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildRegistry_SyntheticAndCustom(t *testing.T) {
	cfg := config.Default()
	cfg.CustomSites = []config.CustomSiteConfig{{
		ID:          "vagasbr",
		Name:        "VagasBR",
		SearchURL:   "https://vagas.example.com/busca?q={role}",
		Selectors:   config.SelectorConfig{Item: ".vaga", Title: "h2"},
		Timeout:     time.Second,
		MinInterval: time.Second,
	}}

	reg, err := buildRegistry(cfg, http.DefaultClient, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	sites := map[string]bool{}
	for _, s := range reg.Sites() {
		sites[s] = true
	}
	for _, want := range []string{"indeed", "catho", "vagasbr"} {
		if !sites[want] {
			t.Errorf("site %q not registered; got %v", want, reg.Sites())
		}
	}
}

func TestBuildRegistry_NoSites(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Synthetic = false

	if _, err := buildRegistry(cfg, http.DefaultClient, discardLogger()); err == nil {
		t.Fatal("expected an error with no sites")
	}
}

func TestSetupNotifier(t *testing.T) {
	cfg := config.Default()
	cfg.Slack.WebhookURL = "https://hooks.slack.example/x"
	cfg.Email.Enabled = true
	cfg.Email.Host = "smtp.example.com"
	cfg.Email.From = "buscajob@example.com"
	cfg.Email.To = []string{"rh@example.com"}

	n, err := setupNotifier(context.Background(), cfg, http.DefaultClient, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := n.(notifier.Multi)
	if !ok || len(multi) != 3 {
		t.Errorf("notifier = %#v, want log, slack and email", n)
	}
}

func TestSetupNotifier_EmailWithoutRecipients(t *testing.T) {
	cfg := config.Default()
	cfg.Email.Enabled = true
	cfg.Email.Host = "smtp.example.com"
	cfg.Email.From = "buscajob@example.com"

	if _, err := setupNotifier(context.Background(), cfg, http.DefaultClient, discardLogger()); err == nil {
		t.Fatal("expected an error without recipients")
	}
}

func TestSetupStore(t *testing.T) {
	cfg := config.Default()

	s, err := setupStore(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*store.NopStore); !ok {
		t.Errorf("store = %T, want *store.NopStore", s)
	}

	cfg.Store.Path = filepath.Join(t.TempDir(), "buscajob.db")
	s, err = setupStore(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*store.SQLiteStore); !ok {
		t.Errorf("store = %T, want *store.SQLiteStore", s)
	}
}

func TestNewApp(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	a, err := newApp(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if len(a.pipeline.Sites()) == 0 {
		t.Error("pipeline has no sites")
	}
	if a.report == nil || a.notifier == nil {
		t.Error("report or notifier not wired")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("São Paulo", 20); got != "São Paulo" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("Desenvolvedor Backend Sênior", 10); got != "Desenvolv…" {
		t.Errorf("truncate long = %q", got)
	}
}
