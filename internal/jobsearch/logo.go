package jobsearch

import (
	"fmt"
	"strings"
)

// DefaultExcludedDomains never get a logo: they host posts for many employers.
var DefaultExcludedDomains = []string{"facebook.com", "google.com"}

// LogoResolver derives a company logo URL from a domain.
type LogoResolver struct {
	// Template receives the domain through a single %s verb.
	Template string
	Excluded []string
}

// LogoURL returns "" when the domain is missing, too short to be real, or
// excluded (including its subdomains).
func (r LogoResolver) LogoURL(domain string) string {
	d := NormalizeDomain(domain)
	if r.Template == "" || len(d) <= 3 || !strings.Contains(d, ".") {
		return ""
	}
	for _, ex := range r.Excluded {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex != "" && (d == ex || strings.HasSuffix(d, "."+ex)) {
			return ""
		}
	}
	if !strings.Contains(r.Template, "%s") {
		return r.Template + d
	}
	return fmt.Sprintf(r.Template, d)
}

// NormalizeDomain lowercases a domain and strips scheme, www, port and path.
func NormalizeDomain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	d = strings.Trim(d, ".")
	if strings.ContainsAny(d, " \t") {
		return ""
	}
	return d
}
