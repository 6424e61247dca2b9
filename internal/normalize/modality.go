package normalize

import (
	"strings"

	"github.com/buscajob/buscajob/internal/model"
)

var (
	homeOfficeTerms = []string{"home office", "home-office", "remote", "remoto", "remota"}
	hybridTerms     = []string{"hibrido", "híbrido", "hibrida", "híbrida"}
	onSiteTerms     = []string{"presencial"}
)

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Modality infers the work arrangement from free text. It returns "" when
// nothing in the text points to one.
func Modality(title, description, location string) string {
	text := strings.ToLower(title + " " + description + " " + location)
	switch {
	case containsAny(text, homeOfficeTerms):
		return model.ModalityHomeOffice
	case containsAny(text, hybridTerms):
		return model.ModalityHybrid
	case containsAny(text, onSiteTerms):
		return model.ModalityOnSite
	case strings.EqualFold(strings.TrimSpace(location), "remoto"):
		return model.ModalityHomeOffice
	}
	return ""
}

// CanonicalModality maps a user or site label ("Home office", "HÍBRIDO",
// "PRESENCIAL", "ON_SITE", ...) to one of the model.Modality* constants.
func CanonicalModality(label string) string {
	v := strings.ToLower(strings.TrimSpace(label))
	if v == "" {
		return ""
	}
	switch strings.ToUpper(v) {
	case model.ModalityHomeOffice, model.ModalityHybrid, model.ModalityOnSite:
		return strings.ToUpper(v)
	}
	switch {
	case containsAny(v, homeOfficeTerms):
		return model.ModalityHomeOffice
	case containsAny(v, hybridTerms), v == "hybrid":
		return model.ModalityHybrid
	case containsAny(v, onSiteTerms), v == "on site", v == "on-site", v == "onsite":
		return model.ModalityOnSite
	}
	return ""
}
