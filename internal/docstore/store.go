// Package docstore defines the document-store collaborator used for
// full-text indexing, ranked queries, and aggregations.
package docstore

import (
	"context"
	"time"

	"github.com/hyperjump/kiji/internal/models"
)

// QuerySpec is the executable form of a fused search query: the effective
// text (or match-all), hard filters, pagination, and sort override.
type QuerySpec struct {
	// Text is the fused query text. Ignored when MatchAll is set.
	Text string
	// MatchAll selects the unranked full corpus instead of a text match.
	MatchAll bool

	// Filters, AND'd with the text match. Zero values mean unbounded.
	Type     string
	DateFrom time.Time
	DateTo   time.Time

	From int
	Size int
	// SortBy is one of models.SortByScore, SortByPostDate, SortByCombined.
	SortBy string
	// Highlight requests match fragments for full-text queries.
	Highlight bool
}

// Hit is a single query hit: the article id, the engine relevance score,
// and optional highlight fragments keyed by field.
type Hit struct {
	ID        int64
	Score     float64
	Highlight map[string][]string
}

// QueryResult holds the total hit count and the requested page of hits.
type QueryResult struct {
	Total int
	Hits  []*Hit
}

// Store is the injected document-store collaborator. Implementations must be
// safe for concurrent use; all calls honor the context deadline.
type Store interface {
	// Index adds or replaces the article document.
	Index(ctx context.Context, a *models.Article) error
	// Query executes a QuerySpec and returns ranked (or index-order) hits.
	Query(ctx context.Context, spec QuerySpec) (*QueryResult, error)
	// CountTags returns the per-tag document counts across the corpus and
	// the total document count. Ordering is up to the caller.
	CountTags(ctx context.Context) (map[string]int, int, error)
	// MoreLikeThis ranks documents by similarity to the given seed terms,
	// excluding excludeID from the results.
	MoreLikeThis(ctx context.Context, excludeID int64, terms []string, limit int) ([]*Hit, error)
	// Delete removes a document by article id.
	Delete(ctx context.Context, id int64) error
	// Count returns the number of indexed documents.
	Count(ctx context.Context) (uint64, error)
	Close() error
}
