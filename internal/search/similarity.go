package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hyperjump/kiji/internal/models"
)

// stopwords excluded from similarity seed terms. Matching on these would
// relate every article to every other.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "his": {}, "how": {}, "if": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {},
	"she": {}, "so": {}, "that": {}, "the": {}, "their": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "which": {}, "who": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// SeedTerms extracts up to max representative terms from the article for
// similarity retrieval: title words and tag names first (they carry the most
// signal), then content words by descending frequency. Terms are lowercased;
// stopwords and words shorter than 3 characters are dropped.
func SeedTerms(a *models.Article, max int) []string {
	if max <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	terms := make([]string, 0, max)
	add := func(term string) bool {
		if _, ok := seen[term]; ok {
			return len(terms) < max
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
		return len(terms) < max
	}

	for _, w := range tokenize(a.Title) {
		if !add(w) {
			return terms
		}
	}
	for _, t := range a.Tags {
		for _, w := range tokenize(t.Name) {
			if !add(w) {
				return terms
			}
		}
	}

	freq := make(map[string]int)
	order := make([]string, 0)
	for _, w := range tokenize(a.Content) {
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	// Stable: frequency desc, then first occurrence in the content.
	pos := make(map[string]int, len(order))
	for i, w := range order {
		pos[w] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if freq[order[i]] != freq[order[j]] {
			return freq[order[i]] > freq[order[j]]
		}
		return pos[order[i]] < pos[order[j]]
	})
	for _, w := range order {
		if !add(w) {
			break
		}
	}
	return terms
}

// tokenize lowercases and splits on non-letter/digit runs, dropping
// stopwords and short tokens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, w := range fields {
		if len(w) < 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}
