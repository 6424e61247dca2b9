package filter

import (
	"regexp"
	"strings"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/normalize"
)

// contractKeywords lists the title/description terms that indicate each
// accepted contract type when the posting's own label does not match.
var contractKeywords = map[string][]string{
	"CLT":          {"CLT", "CARTEIRA", "EFETIVO", "CONTRATO"},
	"PJ":           {"PJ", "PESSOA JURÍDICA", "CNPJ", "PRESTADOR"},
	"ESTÁGIO":      {"ESTÁGIO", "ESTAGIÁRIO", "TRAINEE"},
	"FREELANCER":   {"FREELANCER", "FREELA", "AUTÔNOMO", "PROJETO"},
	"TEMPORÁRIO":   {"TEMPORÁRIO", "TEMP", "SAZONAL"},
	"TERCEIRIZADO": {"TERCEIRIZADO", "OUTSOURCING"},
}

var locationSepRe = regexp.MustCompile(`[;,/\\|]`)

// CriteriaFilter applies the keyword, location, salary, contract and modality
// predicates of a SearchCriteria. A predicate whose criterion is empty always
// passes; a posting must pass every active predicate.
type CriteriaFilter struct {
	keywords      []string
	remoteOnly    bool
	locations     []string
	salaryMin     *float64
	salaryMax     *float64
	contractTypes []string
	modalityGiven bool
	modalities    map[string]bool
}

// NewCriteriaFilter precomputes the lowercased/uppercased criteria once so
// Match stays allocation-light over large result sets.
func NewCriteriaFilter(c model.SearchCriteria) *CriteriaFilter {
	f := &CriteriaFilter{
		keywords:  strings.Fields(strings.ToLower(c.Keywords)),
		salaryMin: salaryBound(c.SalaryMin),
		salaryMax: salaryBound(c.SalaryMax),
	}

	loc := strings.ToLower(strings.TrimSpace(c.Location))
	if loc == "remoto" {
		f.remoteOnly = true
	} else if loc != "" {
		for _, tok := range locationSepRe.Split(loc, -1) {
			if tok = strings.TrimSpace(tok); tok != "" {
				f.locations = append(f.locations, tok)
			}
		}
	}

	for _, ct := range c.ContractTypes {
		if ct = strings.ToUpper(strings.TrimSpace(ct)); ct != "" {
			f.contractTypes = append(f.contractTypes, ct)
		}
	}

	f.modalities = make(map[string]bool)
	for _, m := range c.Modalities {
		if strings.TrimSpace(m) == "" {
			continue
		}
		f.modalityGiven = true
		if canon := normalize.CanonicalModality(m); canon != "" {
			f.modalities[canon] = true
		}
	}
	return f
}

// salaryBound treats a zero or negative bound as unset.
func salaryBound(b *float64) *float64 {
	if b == nil || *b <= 0 {
		return nil
	}
	return b
}

// Apply returns the postings that match, preserving order.
func (f *CriteriaFilter) Apply(postings []model.JobPosting) []model.JobPosting {
	out := make([]model.JobPosting, 0, len(postings))
	for _, p := range postings {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether p passes every active predicate.
func (f *CriteriaFilter) Match(p model.JobPosting) bool {
	return f.matchKeywords(p) &&
		f.matchLocation(p) &&
		f.matchSalary(p) &&
		f.matchContract(p) &&
		f.matchModality(p)
}

func (f *CriteriaFilter) matchKeywords(p model.JobPosting) bool {
	if len(f.keywords) == 0 {
		return true
	}
	text := strings.ToLower(p.Title + " " + p.Description)
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (f *CriteriaFilter) matchLocation(p model.JobPosting) bool {
	loc := strings.ToLower(p.Location)
	if f.remoteOnly {
		return strings.Contains(loc, "remoto")
	}
	if len(f.locations) == 0 {
		return true
	}
	for _, tok := range f.locations {
		if strings.Contains(loc, tok) {
			return true
		}
	}
	return false
}

// matchSalary skips postings whose salary does not parse to a positive value,
// so "A combinar" never excludes a posting.
func (f *CriteriaFilter) matchSalary(p model.JobPosting) bool {
	if f.salaryMin == nil && f.salaryMax == nil {
		return true
	}
	v := ParseSalary(p.Salary)
	if v == 0 {
		return true
	}
	if f.salaryMin != nil && v < *f.salaryMin {
		return false
	}
	if f.salaryMax != nil && v > *f.salaryMax {
		return false
	}
	return true
}

func (f *CriteriaFilter) matchContract(p model.JobPosting) bool {
	if len(f.contractTypes) == 0 {
		return true
	}
	own := strings.ToUpper(p.ContractType)
	for _, ct := range f.contractTypes {
		if own == ct {
			return true
		}
	}
	text := strings.ToUpper(p.Title + " " + p.Description)
	for _, ct := range f.contractTypes {
		for _, kw := range contractKeywords[ct] {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}

// matchModality never excludes a posting whose modality is unknown. Once a
// modality criterion is given, a known modality must be in the accepted set,
// even when none of the given labels was recognized.
func (f *CriteriaFilter) matchModality(p model.JobPosting) bool {
	if !f.modalityGiven || p.Modality == "" {
		return true
	}
	return f.modalities[normalize.CanonicalModality(p.Modality)]
}
