package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// siteOrigins maps a lowercased source site to the origin used to resolve
// relative links.
var siteOrigins = map[string]string{
	"indeed":              "https://br.indeed.com",
	"catho":               "https://www.catho.com.br",
	"vagas":               "https://www.vagas.com.br",
	"vagas.com.br":        "https://www.vagas.com.br",
	"linkedin":            "https://www.linkedin.com",
	"glassdoor":           "https://www.glassdoor.com.br",
	"infojobs":            "https://www.infojobs.com.br",
	"stackoverflow":       "https://stackoverflow.com",
	"stack overflow jobs": "https://stackoverflow.com",
	"github":              "https://github.com",
	"github jobs":         "https://github.com",
	"trampos":             "https://trampos.co",
	"trampos.co":          "https://trampos.co",
	"rocket":              "https://rocketjobs.com.br",
	"rocket jobs":         "https://rocketjobs.com.br",
	"startup":             "https://startupjobs.com",
	"startup jobs":        "https://startupjobs.com",
}

var (
	schemeRe     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
	domainLikeRe = regexp.MustCompile(`(?i)^[a-z0-9.-]+\.[a-z]{2,}`)
)

// SiteOrigin returns the base origin registered for site, if any.
func SiteOrigin(site string) (string, bool) {
	origin, ok := siteOrigins[strings.ToLower(strings.TrimSpace(site))]
	return origin, ok
}

// URL canonicalizes a posting link into an absolute URL with scheme and host.
// The first matching rewrite wins; a result that still lacks a scheme or a
// host yields nil. Applying URL to its own output returns the same value.
func URL(raw *string, site string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	origin, hasOrigin := SiteOrigin(site)
	lower := strings.ToLower(s)
	hasScheme := schemeRe.MatchString(s)

	switch {
	case strings.HasPrefix(lower, "http//"):
		s = "http://" + s[len("http//"):]
	case strings.HasPrefix(lower, "https//"):
		s = "https://" + s[len("https//"):]
	case strings.HasPrefix(s, "/") && hasOrigin:
		s = origin + s
	case !hasScheme && !domainLikeRe.MatchString(s) && hasOrigin:
		s = strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(s, "/")
	case strings.HasPrefix(lower, "www."):
		s = "https://" + s
	case !hasScheme:
		s = "https://" + strings.TrimLeft(s, "/")
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return &s
}
