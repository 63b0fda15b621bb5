// Package search provides query fusion, ranked search, tag aggregation,
// trending, and article similarity over the document store.
package search

import "strings"

// Query modes produced by fusion.
const (
	ModeFullText = "full_text"
	ModeMatchAll = "match_all"
)

// FusedQuery is the result of merging the raw query text with category hints.
type FusedQuery struct {
	// EffectiveText is the text handed to the document store. Empty only in
	// match-all mode.
	EffectiveText string
	Mode          string
}

// Fuse merges the raw query with the category hints into one effective query:
// the trimmed concatenation of the query and the categories, in order,
// separated by single spaces. Only a fully empty request (blank query, no
// usable categories) falls back to match-all; categories alone still run a
// full-text query.
func Fuse(raw string, categories []string) FusedQuery {
	parts := make([]string, 0, len(categories)+1)
	if q := strings.TrimSpace(raw); q != "" {
		parts = append(parts, q)
	}
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return FusedQuery{Mode: ModeMatchAll}
	}
	return FusedQuery{
		EffectiveText: strings.Join(parts, " "),
		Mode:          ModeFullText,
	}
}
