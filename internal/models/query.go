package models

import "time"

// Sort fields accepted by search requests.
const (
	SortByScore    = "_score"
	SortByPostDate = "post_date"
	SortByCombined = "combined_score"
)

// SearchQuery represents a search request with optional category hints and filters.
type SearchQuery struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories,omitempty"`
	Type       string   `json:"type,omitempty"`
	DateFrom   string   `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo     string   `json:"date_to,omitempty"`   // YYYY-MM-DD
	From       int      `json:"from,omitempty"`
	Size       int      `json:"size,omitempty"`
	SortBy     string   `json:"sort_by,omitempty"`
	Highlight  *bool    `json:"highlight,omitempty"`
}

// Validate normalizes pagination and sort. Size defaulting and capping are
// the search service's job, from its configured limits.
// An empty query is valid: fusion decides between full-text and match-all.
func (q *SearchQuery) Validate() error {
	if q.Size < 0 {
		q.Size = 0
	}
	if q.From < 0 {
		q.From = 0
	}
	switch q.SortBy {
	case SortByScore, SortByPostDate, SortByCombined:
	default:
		q.SortBy = SortByScore
	}
	return nil
}

// HighlightEnabled reports whether highlighting was requested (default true).
func (q *SearchQuery) HighlightEnabled() bool {
	return q.Highlight == nil || *q.Highlight
}

// TrendingQuery bounds a trending request by time window and result limit.
type TrendingQuery struct {
	Window time.Duration
	Limit  int
	By     string // "combined" or "engagement"
}

// Validate applies trending defaults: 7 day window, 10 results, combined mode.
func (q *TrendingQuery) Validate() error {
	if q.Window <= 0 {
		q.Window = 7 * 24 * time.Hour
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.By != "engagement" {
		q.By = "combined"
	}
	return nil
}
