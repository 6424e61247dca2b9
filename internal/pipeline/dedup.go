package pipeline

import "github.com/buscajob/buscajob/internal/model"

// Dedup keeps the first posting seen for each lower(title)_lower(company) key
// and drops later ones without merging their fields. Which of two colliding
// postings survives depends on adapter completion order.
func Dedup(postings []model.JobPosting) []model.JobPosting {
	seen := make(map[string]struct{}, len(postings))
	out := make([]model.JobPosting, 0, len(postings))
	for _, p := range postings {
		key := p.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
