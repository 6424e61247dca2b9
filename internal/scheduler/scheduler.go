// Package scheduler runs the saved search, and optionally the fixed report,
// at fixed times of day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/report"
	"github.com/robfig/cron/v3"
)

// DefaultTimes are the daily run times when none are configured.
var DefaultTimes = []string{"09:00", "18:00"}

// Searcher runs one search. *pipeline.Pipeline satisfies it.
type Searcher interface {
	Run(ctx context.Context, criteria model.SearchCriteria) ([]model.JobPosting, error)
}

// ResultSink persists a scheduled result. *snapshot.Sink satisfies it.
type ResultSink interface {
	Save(criteria model.SearchCriteria, postings []model.JobPosting) (string, error)
}

// ReportGenerator builds the fixed report. *report.Generator satisfies it.
type ReportGenerator interface {
	Generate(ctx context.Context) (report.Result, error)
}

// Scheduler wraps robfig/cron with one entry per configured time of day.
type Scheduler struct {
	cron     *cron.Cron
	specs    []string
	store    model.CriteriaStore
	searcher Searcher
	sink     ResultSink
	report   ReportGenerator
	logger   *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithReport also generates the fixed report on every tick.
func WithReport(g ReportGenerator) Option {
	return func(s *Scheduler) { s.report = g }
}

// New validates times ("HH:MM", local time) and builds the cron entries.
func New(times []string, store model.CriteriaStore, searcher Searcher, sink ResultSink, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if len(times) == 0 {
		times = DefaultTimes
	}
	specs := make([]string, 0, len(times))
	for _, t := range times {
		spec, err := cronSpec(t)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		specs:    specs,
		store:    store,
		searcher: searcher,
		sink:     sink,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// cronSpec turns "HH:MM" into a five-field cron spec.
func cronSpec(hhmm string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if !ok || errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid schedule time %q, want HH:MM", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}

// Run registers the entries, starts cron and blocks until ctx is cancelled.
// It waits for a running job to finish before returning nil.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, spec := range s.specs {
		if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
			return fmt.Errorf("cron.AddFunc(%q): %w", spec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("starting scheduler", "specs", s.specs, "report", s.report != nil)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("shutting down scheduler")
	return nil
}

// RunOnce runs the latest saved criteria and writes the result to the sink.
// With no saved criteria the search is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("scheduled search started")

	saved, err := s.store.LatestCriteria(ctx)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.logger.Info("no saved criteria, skipping scheduled search")
	case err != nil:
		s.logger.Error("loading saved criteria failed", "error", err)
	default:
		postings, err := s.searcher.Run(ctx, saved.Criteria)
		if err != nil {
			s.logger.Error("scheduled search failed", "config_id", saved.ID, "error", err)
			break
		}
		if _, err := s.sink.Save(saved.Criteria, postings); err != nil {
			s.logger.Error("saving scheduled result failed", "config_id", saved.ID, "error", err)
			break
		}
		s.logger.Info("scheduled search finished", "config_id", saved.ID, "count", len(postings))
	}

	if s.report == nil || ctx.Err() != nil {
		return
	}
	res, err := s.report.Generate(ctx)
	if err != nil {
		s.logger.Error("scheduled report failed", "error", err)
		return
	}
	s.logger.Info("scheduled report finished", "file", res.File, "count", res.Total)
}
