package pipeline

import (
	"context"
	"fmt"

	"github.com/buscajob/buscajob/internal/model"
	"golang.org/x/sync/errgroup"
)

// taskResult is what one adapter task reports back to the collector.
type taskResult struct {
	site     string
	postings []model.JobPosting
	err      error
}

// fanOut runs every adapter on its own copy of the criteria, at most
// p.workers at a time, and concatenates their postings in completion order.
// A failing task contributes nothing and never cancels the others.
func (p *Pipeline) fanOut(ctx context.Context, adapters []model.SiteAdapter, criteria model.SearchCriteria) []model.JobPosting {
	results := make(chan taskResult, len(adapters))

	var g errgroup.Group
	g.SetLimit(p.workers)
	go func() {
		for _, a := range adapters {
			c := criteria.Clone()
			g.Go(func() error {
				results <- p.runAdapter(ctx, a, c)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	var all []model.JobPosting
	for r := range results {
		if r.err != nil {
			p.logger.Error("site search failed", "site", r.site, "error", r.err)
			p.observer.SiteSearched(r.site, 0, r.err)
			continue
		}
		p.logger.Info("site search finished", "site", r.site, "count", len(r.postings))
		p.observer.SiteSearched(r.site, len(r.postings), nil)
		all = append(all, r.postings...)
	}
	return all
}

// runAdapter converts an adapter panic into an error result.
func (p *Pipeline) runAdapter(ctx context.Context, a model.SiteAdapter, c model.SearchCriteria) (res taskResult) {
	res.site = a.Site()
	defer func() {
		if r := recover(); r != nil {
			res.postings = nil
			res.err = fmt.Errorf("adapter panic: %v", r)
		}
	}()

	if p.adapterTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.adapterTimeout)
		defer cancel()
	}
	res.postings = a.Search(ctx, c)
	return res
}
