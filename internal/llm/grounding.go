package llm

import "strings"

// Source is a display-ready citation.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// SourcesOf collects chunks of one kind in provider order, filling empty
// titles with defaultTitle. Duplicates are kept.
func SourcesOf(chunks []GroundingChunk, kind ChunkKind, defaultTitle string) []Source {
	out := make([]Source, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Kind != kind {
			continue
		}
		title := strings.TrimSpace(ch.Title)
		if title == "" {
			title = defaultTitle
		}
		out = append(out, Source{URI: strings.TrimSpace(ch.URI), Title: title})
	}
	return out
}

// DedupeByURI keeps the first occurrence of every URI. Entries without a URI
// cannot be told apart and are dropped.
func DedupeByURI(sources []Source) []Source {
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" {
			continue
		}
		if _, ok := seen[s.URI]; ok {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	return out
}
