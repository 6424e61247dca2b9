// Package report runs the fixed roles-by-cities search batch and writes the
// merged result as a relatorio_fixo_ snapshot.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/snapshot"
)

// Default fixed-report queries.
var (
	DefaultRoles = []string{
		"Analista de Sistemas",
		"Analista de Negocios",
		"Analista de Requisitos",
		"Desenvolvedor",
	}
	DefaultCities = []string{
		"Joinville",
		"São Paulo",
		"Curitiba",
		"Porto Alegre",
		"Belo Horizonte",
	}
	DefaultContractTypes = []string{"CLT", "PJ"}
)

// Searcher runs one search. *pipeline.Pipeline satisfies it.
type Searcher interface {
	Run(ctx context.Context, criteria model.SearchCriteria) ([]model.JobPosting, error)
	Sites() []string
}

// Result is returned to API and CLI callers.
type Result struct {
	File       string             `json:"arquivo"`
	Total      int                `json:"total"`
	Queries    int                `json:"total_consultas"`
	EmailSent  bool               `json:"email_enviado"`
	EmailError *string            `json:"email_erro"`
	Postings   []model.JobPosting `json:"vagas"`
}

// Generator builds the fixed report.
type Generator struct {
	searcher      Searcher
	sink          *snapshot.Sink
	notifier      model.Notifier
	roles         []string
	cities        []string
	contractTypes []string
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithNotifier delivers each finished report through n.
func WithNotifier(n model.Notifier) Option {
	return func(g *Generator) { g.notifier = n }
}

// WithQueries overrides the role, city and contract type lists. Empty lists
// keep the defaults.
func WithQueries(roles, cities, contractTypes []string) Option {
	return func(g *Generator) {
		if len(roles) > 0 {
			g.roles = roles
		}
		if len(cities) > 0 {
			g.cities = cities
		}
		if len(contractTypes) > 0 {
			g.contractTypes = contractTypes
		}
	}
}

func NewGenerator(searcher Searcher, sink *snapshot.Sink, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		searcher:      searcher,
		sink:          sink,
		roles:         DefaultRoles,
		cities:        DefaultCities,
		contractTypes: DefaultContractTypes,
		now:           time.Now,
		logger:        logger,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

type reportKey struct {
	title, company, site, url string
}

// Generate runs every role/city pair against all registered sites, removes
// exact duplicates by (title, company, site, url), saves the report and
// optionally notifies. A notification failure is reported in the Result,
// not as an error.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	sites := g.searcher.Sites()
	seen := make(map[reportKey]struct{})
	postings := []model.JobPosting{}
	queries := 0

	for _, role := range g.roles {
		for _, city := range g.cities {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			found, err := g.searcher.Run(ctx, model.SearchCriteria{
				Role:          role,
				Location:      city,
				Sites:         sites,
				ContractTypes: g.contractTypes,
			})
			if err != nil {
				return Result{}, fmt.Errorf("report query %q in %q: %w", role, city, err)
			}
			queries++

			for _, p := range found {
				k := reportKey{p.Title, p.Company, p.SourceSite, p.URLString()}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				postings = append(postings, p)
			}
		}
	}

	now := g.now()
	name, err := g.sink.SaveReport(snapshot.Report{
		Timestamp: now,
		Roles:     g.roles,
		Cities:    g.cities,
		Sites:     sites,
		Queries:   queries,
		Total:     len(postings),
		Postings:  postings,
	})
	if err != nil {
		return Result{}, fmt.Errorf("saving report: %w", err)
	}

	res := Result{File: name, Total: len(postings), Queries: queries, Postings: postings}
	g.logger.Info("fixed report generated", "file", name, "queries", queries, "count", len(postings))

	if g.notifier != nil {
		err := g.notifier.Notify(ctx, model.Report{
			Subject: "BuscaJob Relatório Fixo - " + now.Format("2006-01-02"),
			Body: fmt.Sprintf("Relatório gerado em %s\nCargos: %s\nCidades: %s\nTotal de vagas: %d\n",
				now.Format(time.RFC3339), strings.Join(g.roles, ", "), strings.Join(g.cities, ", "), len(postings)),
			FilePath: g.sink.Path(name),
			Total:    len(postings),
		})
		if err != nil {
			msg := err.Error()
			res.EmailError = &msg
			g.logger.Error("failed to send report", "file", name, "error", err)
		} else {
			res.EmailSent = true
		}
	}
	return res, nil
}
