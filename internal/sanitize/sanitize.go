// Package sanitize cleans provider narrative text for display. Two modes exist
// and call sites pick one: StripPlain removes citation markers and emphasis
// for plain-text fields, ParseMarkdownLite keeps bold spans and bullet lines
// as structured blocks.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(?:First|Second|Third|Fourth|Fifth) tool output[^\]]*\]`),
	regexp.MustCompile(`\[[^\[\]]*?in search[^\[\]]*?\]`),
	regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`),
}

var (
	leadingColon = regexp.MustCompile(`(?m)^[ \t-]*:[ \t]*`)
	trailingWS   = regexp.MustCompile(`(?m)[ \t]+$`)
	tagPolicy    = bluemonday.StrictPolicy()
)

// StripCitations removes tool-output references, "in search" brackets and
// numeric citation lists. Applying it to its own output is a no-op.
func StripCitations(s string) string {
	for {
		next := s
		for _, re := range citationPatterns {
			next = re.ReplaceAllString(next, "")
		}
		next = trailingWS.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

// StripPlain produces plain text: citations, asterisks, stray HTML tags and
// dangling leading colons are removed, surrounding whitespace is trimmed.
// Entities are decoded exactly once, after the markup has settled.
func StripPlain(s string) string {
	for {
		next := StripCitations(s)
		next = strings.ReplaceAll(next, "*", "")
		next = leadingColon.ReplaceAllString(next, "")
		next = tagPolicy.Sanitize(next)
		next = strings.TrimSpace(trailingWS.ReplaceAllString(next, ""))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// StripPlainAll applies StripPlain to every element and drops empty results.
func StripPlainAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if cleaned := StripPlain(it); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
