package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

const (
	dateBR  = "02/01/2006"
	dateISO = "2006-01-02"
)

// generateFunc builds the synthetic postings one site returns for criteria.
type generateFunc func(g *generator, c model.SearchCriteria) []model.JobPosting

// SyntheticAdapter serves generated postings shaped like a real job site's
// listings. It stands in for a scraper wherever the site is not fetched live.
type SyntheticAdapter struct {
	site   string
	gen    generateFunc
	seed   *uint64
	now    func() time.Time
	logger *slog.Logger
}

var _ model.SiteAdapter = (*SyntheticAdapter)(nil)

// Option configures a SyntheticAdapter.
type Option func(*SyntheticAdapter)

// WithSeed makes every Search call draw from the same random sequence.
func WithSeed(seed uint64) Option {
	return func(a *SyntheticAdapter) { a.seed = &seed }
}

// WithClock overrides the clock used for publish dates.
func WithClock(now func() time.Time) Option {
	return func(a *SyntheticAdapter) { a.now = now }
}

var syntheticSites = map[string]generateFunc{
	"indeed":        genIndeed,
	"catho":         genCatho,
	"vagas":         genVagas,
	"linkedin":      genLinkedIn,
	"glassdoor":     genGlassdoor,
	"infojobs":      genInfoJobs,
	"stackoverflow": genStackOverflow,
	"github":        genGitHub,
	"trampos":       genTrampos,
	"rocket":        genRocket,
	"startup":       genStartup,
}

// NewSyntheticAdapter returns the generator for site, or false if there is none.
func NewSyntheticAdapter(site string, logger *slog.Logger, opts ...Option) (*SyntheticAdapter, bool) {
	gen, ok := syntheticSites[site]
	if !ok {
		return nil, false
	}
	a := &SyntheticAdapter{site: site, gen: gen, now: time.Now, logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a, true
}

// NewSyntheticAdapters returns one adapter per known synthetic site.
func NewSyntheticAdapters(logger *slog.Logger, opts ...Option) []model.SiteAdapter {
	out := make([]model.SiteAdapter, 0, len(syntheticSites))
	for site := range syntheticSites {
		a, _ := NewSyntheticAdapter(site, logger, opts...)
		out = append(out, a)
	}
	return out
}

func (a *SyntheticAdapter) Site() string { return a.site }

// Search never fails outward: a panic inside the generator is logged and
// yields no postings.
func (a *SyntheticAdapter) Search(ctx context.Context, c model.SearchCriteria) (out []model.JobPosting) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("site adapter failed", "site", a.site, "error", fmt.Sprint(r))
			out = nil
		}
	}()
	if err := ctx.Err(); err != nil {
		a.logger.Warn("site adapter skipped", "site", a.site, "error", err)
		return nil
	}
	return keepIdentifiable(a.gen(a.newGenerator(), c), a.site, a.logger)
}

func (a *SyntheticAdapter) newGenerator() *generator {
	var src rand.Source
	if a.seed != nil {
		src = rand.NewPCG(*a.seed, *a.seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &generator{rng: rand.New(src), now: a.now()}
}

// keepIdentifiable drops postings without a title or company.
func keepIdentifiable(postings []model.JobPosting, site string, logger *slog.Logger) []model.JobPosting {
	out := postings[:0]
	for _, p := range postings {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Company) == "" {
			logger.Debug("dropping unidentifiable posting", "site", site)
			continue
		}
		out = append(out, p)
	}
	return out
}

// generator holds the per-call random source and clock.
type generator struct {
	rng *rand.Rand
	now time.Time
}

// between returns a random int in [lo, hi].
func (g *generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *generator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}

// published returns now minus a random number of days in [lo, hi].
func (g *generator) published(lo, hi int, layout string) string {
	return g.now.AddDate(0, 0, -g.between(lo, hi)).Format(layout)
}

// brl formats a whole amount the way Brazilian listings do: "R$ 8.000".
func brl(amount int) string {
	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "R$ " + b.String()
}

var (
	duties = []string{
		"Atuar como %s em times ágeis",
		"Colaborar com produto e UX",
		"Desenvolver features escaláveis",
		"Escrever código limpo e testável",
		"Participar de code reviews",
	}
	requirements = []string{
		"Experiência com tecnologias modernas",
		"Conhecimento em APIs REST/GraphQL",
		"Boas práticas de versionamento (Git)",
		"Atenção a performance e segurança",
		"Boa comunicação e proatividade",
	}
	benefits = []string{
		"Plano de saúde",
		"Horário flexível",
		"Remoto híbrido",
		"Auxílio educação",
		"Day off no aniversário",
	}
)

// description builds a short varied text with two distinct duties.
func (g *generator) description(role, company string) string {
	i := g.rng.IntN(len(duties))
	j := g.rng.IntN(len(duties) - 1)
	if j >= i {
		j++
	}
	duty := func(k int) string {
		if strings.Contains(duties[k], "%s") {
			return fmt.Sprintf(duties[k], role)
		}
		return duties[k]
	}
	return fmt.Sprintf("Oportunidade como %s na %s. %s. %s. %s. Benefícios: %s.",
		role, company, duty(i), duty(j), g.pick(requirements), g.pick(benefits))
}
