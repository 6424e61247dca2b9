// Package stats keeps the process-wide search counters reported by the API
// and mirrors them to prometheus.
package stats

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot is the JSON shape of /api/estatisticas.
type Snapshot struct {
	TotalSearches int64 `json:"total_buscas"`
	TotalPostings int64 `json:"total_vagas"`
	SavedPostings int64 `json:"vagas_salvas"`
}

// Stats is safe for concurrent use. Counters reset on restart.
type Stats struct {
	searches atomic.Int64
	postings atomic.Int64
	saved    atomic.Int64

	registry       *prometheus.Registry
	searchesTotal  prometheus.Counter
	postingsTotal  prometheus.Counter
	savedTotal     prometheus.Counter
	sitePostings   *prometheus.CounterVec
	siteFailures   *prometheus.CounterVec
	searchDuration prometheus.Histogram
}

// New creates Stats with its own prometheus registry.
func New() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Stats{
		registry: reg,
		searchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buscajob_searches_total",
			Help: "Total number of completed searches",
		}),
		postingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buscajob_postings_total",
			Help: "Total number of postings returned by searches",
		}),
		savedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buscajob_saved_postings_total",
			Help: "Total number of postings saved as favorites",
		}),
		sitePostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buscajob_site_postings_total",
				Help: "Postings fetched per site before dedup and filtering",
			},
			[]string{"site"},
		),
		siteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buscajob_site_failures_total",
				Help: "Adapter runs that failed per site",
			},
			[]string{"site"},
		),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buscajob_search_duration_seconds",
			Help:    "Duration of a full pipeline run in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordSearch counts one finished search that returned count postings.
func (s *Stats) RecordSearch(count int) {
	s.searches.Add(1)
	s.postings.Add(int64(count))
	s.searchesTotal.Inc()
	s.postingsTotal.Add(float64(count))
}

// RecordSaved counts a newly saved favorite.
func (s *Stats) RecordSaved() {
	s.saved.Add(1)
	s.savedTotal.Inc()
}

// SiteSearched records one adapter outcome.
func (s *Stats) SiteSearched(site string, count int, err error) {
	site = strings.ToLower(site)
	if err != nil {
		s.siteFailures.WithLabelValues(site).Inc()
		return
	}
	s.sitePostings.WithLabelValues(site).Add(float64(count))
}

// SearchFinished records the pipeline duration. Search totals are counted by
// RecordSearch so scheduled runs do not show up in the API counters.
func (s *Stats) SearchFinished(d time.Duration, _ int) {
	s.searchDuration.Observe(d.Seconds())
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TotalSearches: s.searches.Load(),
		TotalPostings: s.postings.Load(),
		SavedPostings: s.saved.Load(),
	}
}

// Handler serves the prometheus exposition of this Stats' registry.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
