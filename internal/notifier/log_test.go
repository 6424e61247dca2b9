package notifier

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/buscajob/buscajob/internal/model"
)

func TestLogNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify(context.Background(), model.Report{Subject: "Relatório", Total: 7, FilePath: "/out/relatorio_fixo_x.json"})
	if err != nil {
		t.Errorf("Notify() = %v, want nil", err)
	}
	out := buf.String()
	for _, want := range []string{"report ready", "total=7", "file=/out/relatorio_fixo_x.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLogNotifier_Notify_noFile(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), model.Report{Subject: "x"}); err != nil {
		t.Errorf("Notify() = %v, want nil", err)
	}
	if strings.Contains(buf.String(), "file=") {
		t.Errorf("unexpected file attribute: %s", buf.String())
	}
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, model.Report) error {
	r.calls++
	return r.err
}

func TestMulti(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("down")}
	last := &recordingNotifier{}

	err := Multi{ok, bad, last}.Notify(context.Background(), model.Report{})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Errorf("expected joined error, got %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 || last.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want every notifier called once", ok.calls, bad.calls, last.calls)
	}

	if err := (Multi{ok}).Notify(context.Background(), model.Report{}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := (Multi{}).Notify(context.Background(), model.Report{}); err != nil {
		t.Errorf("empty Multi = %v, want nil", err)
	}
}
