package search

import (
	"strings"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func TestSeedTerms_TitleAndTagsFirst(t *testing.T) {
	a := &models.Article{
		Title:   "Transformer Architectures",
		Tags:    []models.Tag{{Name: "Deep Learning"}},
		Content: "attention attention attention layers layers tokens",
	}
	terms := SeedTerms(a, 25)
	if len(terms) < 4 {
		t.Fatalf("too few terms: %v", terms)
	}
	if terms[0] != "transformer" || terms[1] != "architectures" {
		t.Errorf("title terms should come first: %v", terms)
	}
	joined := strings.Join(terms, " ")
	if !strings.Contains(joined, "deep") || !strings.Contains(joined, "learning") {
		t.Errorf("tag terms missing: %v", terms)
	}
}

func TestSeedTerms_ContentByFrequency(t *testing.T) {
	a := &models.Article{
		Content: "rare common common common middling middling",
	}
	terms := SeedTerms(a, 2)
	if len(terms) != 2 {
		t.Fatalf("got %d terms, want 2", len(terms))
	}
	if terms[0] != "common" || terms[1] != "middling" {
		t.Errorf("terms = %v, want frequency order [common middling]", terms)
	}
}

func TestSeedTerms_CapAndDedup(t *testing.T) {
	a := &models.Article{
		Title:   "echo echo echo",
		Content: "echo echo " + strings.Repeat("word", 1) + " alpha beta gamma delta",
	}
	terms := SeedTerms(a, 3)
	if len(terms) > 3 {
		t.Errorf("cap not applied: %v", terms)
	}
	seen := map[string]bool{}
	for _, term := range terms {
		if seen[term] {
			t.Errorf("duplicate term %q in %v", term, terms)
		}
		seen[term] = true
	}
}

func TestSeedTerms_FiltersStopwordsAndShortTokens(t *testing.T) {
	a := &models.Article{
		Title:   "The and of it",
		Content: "a an to we is on meaningful",
	}
	terms := SeedTerms(a, 25)
	if len(terms) != 1 || terms[0] != "meaningful" {
		t.Errorf("terms = %v, want [meaningful]", terms)
	}
}

func TestSeedTerms_ZeroMax(t *testing.T) {
	if terms := SeedTerms(&models.Article{Title: "anything"}, 0); terms != nil {
		t.Errorf("max 0 should yield nil, got %v", terms)
	}
}
