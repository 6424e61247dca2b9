package model

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Normalized work arrangement labels. Empty means unknown.
const (
	ModalityHomeOffice = "HOME_OFFICE"
	ModalityHybrid     = "HYBRID"
	ModalityOnSite     = "ON_SITE"
)

// JobPosting is the canonical record every site adapter produces. Salary and
// PublishedAt are kept as the site formats them. URL is nil when the link
// could not be recovered during normalization.
type JobPosting struct {
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Location        string  `json:"location"`
	Salary          string  `json:"salary"`
	Description     string  `json:"description"`
	PublishedAt     string  `json:"published_at"`
	SourceSite      string  `json:"source_site"`
	URL             *string `json:"url"`
	ContractType    string  `json:"contract_type"`
	ExperienceLevel string  `json:"experience_level"`
	Modality        string  `json:"modality"`
}

// DedupKey is lower(title) + "_" + lower(company).
func (p JobPosting) DedupKey() string {
	return strings.ToLower(p.Title) + "_" + strings.ToLower(p.Company)
}

// ID is a stable identifier derived from the dedup key.
func (p JobPosting) ID() string {
	sum := sha1.Sum([]byte(p.DedupKey()))
	return "vaga_" + hex.EncodeToString(sum[:8])
}

// URLString returns the URL or "" when it is nil.
func (p JobPosting) URLString() string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

// StringPtr is a helper for building postings with a URL.
func StringPtr(s string) *string {
	return &s
}

// SiteAdapter produces postings for one job site. Implementations must not
// return errors: failures are logged and turn into an empty result.
type SiteAdapter interface {
	Site() string
	Search(ctx context.Context, criteria SearchCriteria) []JobPosting
}

// PageFetcher downloads a single page for a network-backed adapter.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Notifier delivers a finished report somewhere outside the process.
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// Report is what notifiers receive after a batch run.
type Report struct {
	Subject  string
	Body     string
	FilePath string // attachment, optional
	Total    int
}

// SavedCriteria is a search configuration persisted for scheduled runs.
type SavedCriteria struct {
	ID        string         `json:"id"`
	Criteria  SearchCriteria `json:"criterios"`
	CreatedAt time.Time      `json:"data_criacao"`
}

// CriteriaStore persists saved search configurations and favorite postings.
type CriteriaStore interface {
	SaveCriteria(ctx context.Context, c SearchCriteria) (SavedCriteria, error)
	ListCriteria(ctx context.Context) ([]SavedCriteria, error)
	LatestCriteria(ctx context.Context) (SavedCriteria, error)
	SaveFavorite(ctx context.Context, postingID string) (bool, error)
	Close() error
}
