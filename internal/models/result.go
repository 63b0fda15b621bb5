package models

// SearchResult is a single search hit: stored article fields plus the
// engine relevance score and optional highlight fragments.
type SearchResult struct {
	ID            int64               `json:"id"`
	Score         float64             `json:"score"`
	Title         string              `json:"title"`
	Subtitle      string              `json:"subtitle,omitempty"`
	Snippet       string              `json:"snippet,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
	Type          ArticleType         `json:"type,omitempty"`
	PostDate      string              `json:"post_date,omitempty"`
	CombinedScore float64             `json:"combined_score"`
	Highlight     map[string][]string `json:"highlight,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Total         int             `json:"total"`
	Results       []*SearchResult `json:"results"`
	Query         string          `json:"query"`
	OriginalQuery string          `json:"original_query"`
	Mode          string          `json:"mode"`
	From          int             `json:"from"`
	Size          int             `json:"size"`
	QueryTime     int64           `json:"query_time_ms"`
}

// TagCount is one bucket of the tag-frequency aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagAggregation is the tag-frequency aggregation over admitted articles.
type TagAggregation struct {
	Tags           []TagCount `json:"tags"`
	TotalTags      int        `json:"total_tags"`
	TotalDocuments int        `json:"total_documents"`
}
