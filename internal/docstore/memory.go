// Package docstore provides an in-memory Store for tests and small corpora.
package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/kiji/internal/models"
)

// MemoryStore is an in-memory document store using brute-force term
// matching. Suitable for tests; ranking is a simple term-frequency model
// with the same field boosts as the Bleve store.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[int64]*models.Article
	order    []int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[int64]*models.Article)}
}

// Index adds or replaces the article document.
func (m *MemoryStore) Index(ctx context.Context, a *models.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.articles[a.ID]; !exists {
		m.order = append(m.order, a.ID)
	}
	clone := *a
	m.articles[a.ID] = &clone
	return nil
}

// Query executes the query spec against the in-memory corpus.
func (m *MemoryStore) Query(ctx context.Context, spec QuerySpec) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		id    int64
		score float64
	}
	var matched []scored
	terms := strings.Fields(strings.ToLower(spec.Text))
	for _, id := range m.order {
		a := m.articles[id]
		if !matchesFilters(a, spec) {
			continue
		}
		if spec.MatchAll {
			matched = append(matched, scored{id: id})
			continue
		}
		score := termScore(a, terms)
		if score > 0 {
			matched = append(matched, scored{id: id, score: score})
		}
	}

	switch spec.SortBy {
	case models.SortByPostDate:
		sort.SliceStable(matched, func(i, j int) bool {
			return m.articles[matched[i].id].PostDate.After(m.articles[matched[j].id].PostDate)
		})
	case models.SortByCombined:
		sort.SliceStable(matched, func(i, j int) bool {
			return m.articles[matched[i].id].CombinedScore > m.articles[matched[j].id].CombinedScore
		})
	default:
		if !spec.MatchAll {
			sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
		}
	}

	total := len(matched)
	start := spec.From
	if start > total {
		start = total
	}
	end := start + spec.Size
	if spec.Size <= 0 || end > total {
		end = total
	}

	out := &QueryResult{Total: total, Hits: make([]*Hit, 0, end-start)}
	for _, s := range matched[start:end] {
		out.Hits = append(out.Hits, &Hit{ID: s.id, Score: s.score})
	}
	return out, nil
}

// CountTags returns per-tag document counts and the total document count.
func (m *MemoryStore) CountTags(ctx context.Context) (map[string]int, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range m.articles {
		for _, t := range a.Tags {
			counts[t.Name]++
		}
	}
	return counts, len(m.articles), nil
}

// MoreLikeThis ranks documents by shared seed terms, excluding the seed.
func (m *MemoryStore) MoreLikeThis(ctx context.Context, excludeID int64, terms []string, limit int) ([]*Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	var hits []*Hit
	for _, id := range m.order {
		if id == excludeID {
			continue
		}
		score := termScore(m.articles[id], lowered)
		if score > 0 {
			hits = append(hits, &Hit{ID: id, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Delete removes a document by article id.
func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return nil
	}
	delete(m.articles, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of indexed documents.
func (m *MemoryStore) Count(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.articles)), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

func matchesFilters(a *models.Article, spec QuerySpec) bool {
	if spec.Type != "" && string(a.Type) != spec.Type {
		return false
	}
	if !spec.DateFrom.IsZero() && a.PostDate.Before(spec.DateFrom) {
		return false
	}
	if !spec.DateTo.IsZero() && a.PostDate.After(spec.DateTo) {
		return false
	}
	return true
}

// termScore counts term occurrences with the Bleve store's field boosts.
func termScore(a *models.Article, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	title := strings.ToLower(a.Title)
	subtitle := strings.ToLower(a.Subtitle)
	content := strings.ToLower(a.Content)
	tags := strings.ToLower(strings.Join(a.TagNames(), " "))
	var score float64
	for _, term := range terms {
		score += float64(strings.Count(title, term)) * titleBoost
		score += float64(strings.Count(subtitle, term)) * subtitleBoost
		score += float64(strings.Count(tags, term)) * tagsBoost
		score += float64(strings.Count(content, term))
	}
	return score
}
