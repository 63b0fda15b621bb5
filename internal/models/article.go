// Package models defines core data structures for articles, queries, and search results.
package models

import "time"

// ArticleType is the closed set of article types delivered by the crawler.
type ArticleType string

const (
	TypeNewsletter ArticleType = "newsletter"
	TypeTutorial   ArticleType = "tutorial"
	TypePaper      ArticleType = "paper"
)

// Tag is a named category with a stable slug.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Article is the unit of ingestion and retrieval. ID is assigned by the
// crawler; ContentHash is derived at ingestion time. The four score fields
// are computed once at ingestion and stored with the document.
type Article struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Subtitle    string           `json:"subtitle,omitempty"`
	Content     string           `json:"content,omitempty"`
	PostDate    time.Time        `json:"post_date"`
	Type        ArticleType      `json:"type"`
	Wordcount   int              `json:"wordcount"`
	Tags        []Tag            `json:"tags,omitempty"`
	Reactions   map[string]int64 `json:"reactions,omitempty"`
	LocalImages []string         `json:"local_images,omitempty"`

	ContentHash string `json:"content_hash,omitempty"`

	PopularityScore float64 `json:"popularity_score"`
	FreshnessScore  float64 `json:"freshness_score"`
	QualityScore    float64 `json:"quality_score"`
	CombinedScore   float64 `json:"combined_score"`
}

// ReactionCount returns the sum over all reaction-symbol counts.
func (a *Article) ReactionCount() int64 {
	var total int64
	for _, n := range a.Reactions {
		total += n
	}
	return total
}

// TagNames returns the tag names in input order.
func (a *Article) TagNames() []string {
	names := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		names[i] = t.Name
	}
	return names
}

// Identity is the (id, content_hash) pair used by deduplication.
type Identity struct {
	ID          int64  `json:"id"`
	ContentHash string `json:"content_hash"`
}
