package jobsearch

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator delimits job records in the search response.
const Separator = "---JOB_SEPARATOR---"

const (
	defaultCompany  = "Đang cập nhật"
	defaultLocation = "Việt Nam"
	defaultSalary   = "Thỏa thuận"
	defaultSource   = "Google Search"
)

var fieldPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, label := range []string{"Title", "Company", "Domain", "Location", "Salary", "Description", "Source", "Link"} {
		fieldPatterns[label] = regexp.MustCompile(`(?m)^[ \t>*\-]*(?:\*\*)?` + label + `(?:\*\*)?[ \t]*:[ \t]*(.*)$`)
	}
}

// field returns the trimmed value after the first "Label:" line prefix.
func field(record, label string) string {
	m := fieldPatterns[label].FindStringSubmatch(record)
	if m == nil {
		return ""
	}
	v := strings.TrimSpace(m[1])
	v = strings.Trim(v, "*")
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// ParseListings splits text on Separator and extracts one listing per record
// that carries a Title. The city fills an absent location before the national
// default is used. batch makes ids unique across searches.
func ParseListings(text, city, batch string, logo LogoResolver) []Listing {
	locationDefault := strings.TrimSpace(city)
	if locationDefault == "" {
		locationDefault = defaultLocation
	}

	var out []Listing
	for i, record := range strings.Split(text, Separator) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		title := field(record, "Title")
		if title == "" {
			continue
		}
		l := Listing{
			ID:          fmt.Sprintf("job-%d-%s", i, batch),
			Title:       title,
			Company:     orDefault(field(record, "Company"), defaultCompany),
			Location:    orDefault(field(record, "Location"), locationDefault),
			Salary:      orDefault(field(record, "Salary"), defaultSalary),
			Description: field(record, "Description"),
			Source:      orDefault(field(record, "Source"), defaultSource),
		}
		if d := NormalizeDomain(field(record, "Domain")); d != "" {
			l.Domain = d
			l.LogoURL = logo.LogoURL(d)
		}
		if link := field(record, "Link"); isHTTPURL(link) {
			l.OriginalLink = link
		}
		out = append(out, l)
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func isHTTPURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
