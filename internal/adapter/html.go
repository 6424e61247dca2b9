package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/buscajob/buscajob/internal/model"
)

// HTMLSelectors are CSS selectors evaluated inside each listing element.
// Link defaults to the listing element's own href when empty.
type HTMLSelectors struct {
	Item        string
	Title       string
	Company     string
	Location    string
	Salary      string
	Description string
	Link        string
	Published   string
}

// HTMLSite describes a job board scraped from its search results page.
// SearchURL may contain {role} and {location}, which are query-escaped.
type HTMLSite struct {
	ID           string
	Name         string
	SearchURL    string
	Selectors    HTMLSelectors
	ContractType string
	Timeout      time.Duration
}

// HTMLAdapter scrapes a search results page with goquery. Fetch retries and
// pacing live in the PageFetcher it is given.
type HTMLAdapter struct {
	site    HTMLSite
	fetcher model.PageFetcher
	logger  *slog.Logger
}

var _ model.SiteAdapter = (*HTMLAdapter)(nil)

// NewHTMLAdapter creates an adapter for site using fetcher for downloads.
func NewHTMLAdapter(site HTMLSite, fetcher model.PageFetcher, logger *slog.Logger) *HTMLAdapter {
	if site.Name == "" {
		site.Name = site.ID
	}
	return &HTMLAdapter{site: site, fetcher: fetcher, logger: logger}
}

func (a *HTMLAdapter) Site() string { return a.site.ID }

// Search fetches and parses the results page. Any failure is logged with the
// site id and produces no postings.
func (a *HTMLAdapter) Search(ctx context.Context, c model.SearchCriteria) (out []model.JobPosting) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("site adapter failed", "site", a.site.ID, "error", fmt.Sprint(r))
			out = nil
		}
	}()

	if a.site.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.site.Timeout)
		defer cancel()
	}

	pageURL := a.searchURL(c)
	body, err := a.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		a.logger.Error("site adapter failed", "site", a.site.ID, "url", pageURL, "error", err)
		return nil
	}

	postings, err := a.parse(body, pageURL)
	if err != nil {
		a.logger.Error("site adapter failed", "site", a.site.ID, "url", pageURL, "error", err)
		return nil
	}
	return keepIdentifiable(postings, a.site.ID, a.logger)
}

func (a *HTMLAdapter) searchURL(c model.SearchCriteria) string {
	r := strings.NewReplacer(
		"{role}", url.QueryEscape(strings.TrimSpace(c.Role)),
		"{location}", url.QueryEscape(strings.TrimSpace(c.Location)),
	)
	return r.Replace(a.site.SearchURL)
}

func (a *HTMLAdapter) parse(body []byte, pageURL string) ([]model.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	base, _ := url.Parse(pageURL)
	sel := a.site.Selectors

	var postings []model.JobPosting
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		p := model.JobPosting{
			Title:        fieldText(s, sel.Title),
			Company:      fieldText(s, sel.Company),
			Location:     fieldText(s, sel.Location),
			Salary:       fieldText(s, sel.Salary),
			Description:  fieldText(s, sel.Description),
			PublishedAt:  fieldText(s, sel.Published),
			SourceSite:   a.site.Name,
			ContractType: a.site.ContractType,
		}
		if href := a.link(s); href != "" {
			p.URL = model.StringPtr(resolveLink(base, href))
		}
		postings = append(postings, p)
	})
	return postings, nil
}

func (a *HTMLAdapter) link(s *goquery.Selection) string {
	if a.site.Selectors.Link == "" {
		return strings.TrimSpace(s.AttrOr("href", ""))
	}
	return strings.TrimSpace(s.Find(a.site.Selectors.Link).First().AttrOr("href", ""))
}

// resolveLink makes href absolute against the page it was found on. Links
// that do not parse are returned unchanged for the normalizer to judge.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
