package adapter

import (
	"slices"
	"strings"

	"github.com/buscajob/buscajob/internal/model"
)

// DefaultSites is used when a search does not name any site.
var DefaultSites = []string{"indeed", "catho"}

// FallbackSites is reported by Sites when nothing is registered.
var FallbackSites = []string{
	"linkedin", "indeed", "catho", "infojobs", "trampos", "gupy",
	"kenoby", "empregos", "glassdoor", "stackoverflow", "vagas",
}

// Registry maps site identifiers to adapters. It is populated once at startup
// and read concurrently afterwards.
type Registry struct {
	adapters map[string]model.SiteAdapter
}

// NewRegistry returns a registry holding the given adapters, keyed by the
// lowercased Site() of each.
func NewRegistry(adapters ...model.SiteAdapter) *Registry {
	r := &Registry{adapters: make(map[string]model.SiteAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[strings.ToLower(a.Site())] = a
	}
	return r
}

// Resolve returns the adapters for sites in request order. Unknown and
// repeated identifiers are skipped. An empty list resolves DefaultSites.
func (r *Registry) Resolve(sites []string) []model.SiteAdapter {
	if len(sites) == 0 {
		sites = DefaultSites
	}
	seen := make(map[string]bool, len(sites))
	var out []model.SiteAdapter
	for _, s := range sites {
		id := strings.ToLower(strings.TrimSpace(s))
		a, ok := r.adapters[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, a)
	}
	return out
}

// Sites lists the registered site identifiers in sorted order, or
// FallbackSites when the registry is empty.
func (r *Registry) Sites() []string {
	if len(r.adapters) == 0 {
		return slices.Clone(FallbackSites)
	}
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
