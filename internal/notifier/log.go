package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/buscajob/buscajob/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes finished reports to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each report via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the report subject, total and file. It never fails.
func (n *LogNotifier) Notify(_ context.Context, r model.Report) error {
	args := []any{"subject", r.Subject, "total", r.Total}
	if r.FilePath != "" {
		args = append(args, "file", r.FilePath)
	}
	n.logger.Info("report ready", args...)
	return nil
}

// Ensure Multi implements model.Notifier.
var _ model.Notifier = Multi(nil)

// Multi delivers a report to every notifier in order. One failure does not
// stop the others; the joined error is returned.
type Multi []model.Notifier

func (m Multi) Notify(ctx context.Context, r model.Report) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
