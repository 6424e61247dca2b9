// Package normalize canonicalizes posting links and work modality after
// fan-out. Both passes degrade bad input to an empty value and never drop a
// record.
package normalize

import "github.com/buscajob/buscajob/internal/model"

// Postings runs the URL and modality passes in place and returns postings.
func Postings(postings []model.JobPosting) []model.JobPosting {
	for i := range postings {
		p := &postings[i]
		p.URL = URL(p.URL, p.SourceSite)
		p.Modality = CanonicalModality(p.Modality)
		if p.Modality == "" {
			p.Modality = Modality(p.Title, p.Description, p.Location)
		}
	}
	return postings
}
