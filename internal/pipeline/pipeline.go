// Package pipeline turns one search into a result set: it fans the criteria
// out to the selected site adapters, then normalizes, deduplicates and
// filters what comes back.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buscajob/buscajob/internal/adapter"
	"github.com/buscajob/buscajob/internal/filter"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/normalize"
)

// DefaultWorkers bounds how many adapters run at once.
const DefaultWorkers = 4

// Observer is told about each adapter outcome and each finished run.
type Observer interface {
	SiteSearched(site string, count int, err error)
	SearchFinished(duration time.Duration, count int)
}

type nopObserver struct{}

func (nopObserver) SiteSearched(string, int, error)   {}
func (nopObserver) SearchFinished(time.Duration, int) {}

// Stages exposes the intermediate result sets of one run.
type Stages struct {
	All     []model.JobPosting // normalized and deduplicated
	Matched []model.JobPosting // All after the criteria filter
}

// Pipeline composes fan-out, normalization, dedup and filtering.
type Pipeline struct {
	registry       *adapter.Registry
	workers        int
	adapterTimeout time.Duration
	defaultSites   []string
	observer       Observer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers overrides DefaultWorkers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithAdapterTimeout bounds each adapter call.
func WithAdapterTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.adapterTimeout = d }
}

// WithDefaultSites replaces adapter.DefaultSites for searches that name no
// site. An empty list keeps the default.
func WithDefaultSites(sites []string) Option {
	return func(p *Pipeline) {
		if len(sites) > 0 {
			p.defaultSites = sites
		}
	}
}

// WithObserver registers an Observer for adapter and run outcomes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// New creates a Pipeline over registry.
func New(registry *adapter.Registry, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:     registry,
		workers:      DefaultWorkers,
		defaultSites: adapter.DefaultSites,
		observer:     nopObserver{},
		logger:       logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Sites lists the site identifiers searches can name.
func (p *Pipeline) Sites() []string {
	return p.registry.Sites()
}

// Run executes one search and returns the matching postings. No matches is
// a successful empty result; an error means no result at all.
func (p *Pipeline) Run(ctx context.Context, criteria model.SearchCriteria) ([]model.JobPosting, error) {
	st, err := p.RunStages(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return st.Matched, nil
}

// RunStages is Run, also returning the deduplicated set before filtering.
func (p *Pipeline) RunStages(ctx context.Context, criteria model.SearchCriteria) (stages Stages, err error) {
	if err := criteria.Validate(); err != nil {
		return Stages{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("search failed", "role", criteria.Role, "error", r)
			stages = Stages{}
			err = fmt.Errorf("search pipeline: %v", r)
		}
	}()

	start := time.Now()
	sites := criteria.Sites
	if len(sites) == 0 {
		sites = p.defaultSites
	}
	adapters := p.registry.Resolve(sites)
	p.logger.Info("starting search", "role", criteria.Role, "sites", len(adapters))

	fetched := p.fanOut(ctx, adapters, criteria)
	unique := Dedup(normalize.Postings(fetched))
	matched := filter.NewCriteriaFilter(criteria).Apply(unique)

	elapsed := time.Since(start)
	p.logger.Info("search finished",
		"fetched", len(fetched),
		"unique", len(unique),
		"matched", len(matched),
		"duration", elapsed,
	)
	p.observer.SearchFinished(elapsed, len(matched))

	return Stages{All: unique, Matched: matched}, nil
}
