package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/docstore"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/storage"
	"github.com/hyperjump/kiji/pkg/utils"
)

// ErrInvalidQuery marks request errors the caller should report as bad input.
var ErrInvalidQuery = errors.New("invalid query")

// Service answers search, aggregation, trending, and similarity requests.
// Hits come from the document store as ids and scores; the stored article is
// the source the results are hydrated from.
type Service struct {
	docs    docstore.Store
	storage storage.ArticleStore
	config  *config.SearchConfig
	logger  *zap.Logger // optional; when set, logs hydration misses
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a search service with the given dependencies.
func NewService(docs docstore.Store, store storage.ArticleStore, cfg *config.SearchConfig, opts ...ServiceOption) *Service {
	s := &Service{
		docs:    docs,
		storage: store,
		config:  cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fuses the query with its category hints, runs it against the
// document store, and hydrates the hits into full results.
func (s *Service) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if query.Size == 0 {
		query.Size = s.config.DefaultLimit
	}
	if query.Size > s.config.MaxLimit {
		query.Size = s.config.MaxLimit
	}

	fused := Fuse(query.Query, query.Categories)
	spec := docstore.QuerySpec{
		Text:      fused.EffectiveText,
		MatchAll:  fused.Mode == ModeMatchAll,
		Type:      query.Type,
		From:      query.From,
		Size:      query.Size,
		SortBy:    query.SortBy,
		Highlight: fused.Mode == ModeFullText && query.HighlightEnabled(),
	}
	var err error
	if spec.DateFrom, err = parseDate(query.DateFrom); err != nil {
		return nil, fmt.Errorf("%w: bad date_from %q", ErrInvalidQuery, query.DateFrom)
	}
	if spec.DateTo, err = parseDate(query.DateTo); err != nil {
		return nil, fmt.Errorf("%w: bad date_to %q", ErrInvalidQuery, query.DateTo)
	}

	res, err := s.docs.Query(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return &models.SearchResponse{
		Total:         res.Total,
		Results:       s.hydrate(ctx, res.Hits),
		Query:         fused.EffectiveText,
		OriginalQuery: query.Query,
		Mode:          fused.Mode,
		From:          query.From,
		Size:          query.Size,
		QueryTime:     time.Since(startTime).Milliseconds(),
	}, nil
}

// Get returns the stored article by id. Returns storage.ErrNotFound when the
// id was never admitted.
func (s *Service) Get(ctx context.Context, id int64) (*models.Article, error) {
	return s.storage.GetArticle(ctx, id)
}

// AggregateTags returns per-tag article counts, ordered by count descending
// with ties broken by tag name. Tags with fewer than minCount articles are
// dropped; size bounds the returned buckets (0 means all).
func (s *Service) AggregateTags(ctx context.Context, size, minCount int) (*models.TagAggregation, error) {
	counts, totalDocs, err := s.docs.CountTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("tag aggregation failed: %w", err)
	}

	tags := make([]models.TagCount, 0, len(counts))
	for tag, count := range counts {
		if count < minCount {
			continue
		}
		tags = append(tags, models.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	total := len(tags)
	if size > 0 && len(tags) > size {
		tags = tags[:size]
	}
	return &models.TagAggregation{
		Tags:           tags,
		TotalTags:      total,
		TotalDocuments: totalDocs,
	}, nil
}

// Trending returns the top articles posted within the query window. The
// "combined" mode ranks by combined score; "engagement" re-ranks the
// highest-combined candidates by raw reaction count.
func (s *Service) Trending(ctx context.Context, query *models.TrendingQuery) ([]*models.SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	size := query.Limit
	if query.By == "engagement" && s.config.TrendingCandidates > size {
		size = s.config.TrendingCandidates
	}
	res, err := s.docs.Query(ctx, docstore.QuerySpec{
		MatchAll: true,
		DateFrom: time.Now().Add(-query.Window),
		Size:     size,
		SortBy:   models.SortByCombined,
	})
	if err != nil {
		return nil, fmt.Errorf("trending query failed: %w", err)
	}

	hits := s.hydrateFull(ctx, res.Hits)
	if query.By == "engagement" {
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].article.ReactionCount() > hits[j].article.ReactionCount()
		})
	}
	if len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}
	items := make([]*models.SearchResult, len(hits))
	for i, h := range hits {
		items[i] = h.item
	}
	return items, nil
}

// Similar returns articles most like the given one, ranked by term overlap
// with the seed article's title, tags, and content. The seed article itself
// is excluded. Returns storage.ErrNotFound when the seed id is unknown.
func (s *Service) Similar(ctx context.Context, id int64, limit int) ([]*models.SearchResult, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	seed, err := s.storage.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	terms := SeedTerms(seed, s.config.MoreLikeThisMaxTerms)
	if len(terms) == 0 {
		return []*models.SearchResult{}, nil
	}
	hits, err := s.docs.MoreLikeThis(ctx, id, terms, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	return s.hydrate(ctx, hits), nil
}

// hydrate resolves hits to stored articles and builds result rows. Hits
// whose article is gone from storage are dropped rather than failing the
// whole request.
func (s *Service) hydrate(ctx context.Context, hits []*docstore.Hit) []*models.SearchResult {
	full := s.hydrateFull(ctx, hits)
	items := make([]*models.SearchResult, len(full))
	for i, h := range full {
		items[i] = h.item
	}
	return items
}

// hydratedHit pairs a result row with its source article so callers can
// re-rank on fields the row does not carry without the two drifting apart.
type hydratedHit struct {
	item    *models.SearchResult
	article *models.Article
}

func (s *Service) hydrateFull(ctx context.Context, hits []*docstore.Hit) []hydratedHit {
	out := make([]hydratedHit, 0, len(hits))
	for _, hit := range hits {
		a, err := s.storage.GetArticle(ctx, hit.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("indexed article missing from storage",
					zap.Int64("id", hit.ID),
					zap.Error(err))
			}
			continue
		}
		out = append(out, hydratedHit{
			item: &models.SearchResult{
				ID:            a.ID,
				Score:         hit.Score,
				Title:         a.Title,
				Subtitle:      a.Subtitle,
				Snippet:       utils.Truncate(a.Content, s.config.SnippetLength),
				Tags:          a.TagNames(),
				Type:          a.Type,
				PostDate:      a.PostDate.Format("2006-01-02"),
				CombinedScore: a.CombinedScore,
				Highlight:     hit.Highlight,
			},
			article: a,
		})
	}
	return out
}

// parseDate parses an optional YYYY-MM-DD filter bound.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
