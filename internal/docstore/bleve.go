// Package docstore provides the Bleve implementation of Store.
package docstore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/kiji/internal/models"
)

// Field boosts for the full-text disjunction, following the newsletter
// relevance model: title highest, subtitle next, tags, then content.
const (
	titleBoost    = 3.0
	subtitleBoost = 2.0
	tagsBoost     = 1.5
)

const tagFacetSize = 10000

// bleveArticle is the indexed shape of an article. Text fields are stored
// so highlight fragments can be generated.
type bleveArticle struct {
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	Content         string    `json:"content"`
	Tags            []string  `json:"tags"`
	TagsText        string    `json:"tags_text"`
	Type            string    `json:"type"`
	PostDate        time.Time `json:"post_date"`
	Wordcount       float64   `json:"wordcount"`
	PopularityScore float64   `json:"popularity_score"`
	CombinedScore   float64   `json:"combined_score"`
}

// BleveStore implements Store using Bleve.
type BleveStore struct {
	index bleve.Index
}

// NewBleveStore creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full re-index after a
// mapping change.
func NewBleveStore(path string) (*BleveStore, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so query terms
	// match indexed words exactly.
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("subtitle", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags_text", textFieldMapping)

	// Tags and type are keyword fields: exact values for facets and filters.
	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("tags", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)

	docMapping.AddFieldMappingsAt("post_date", bleve.NewDateTimeFieldMapping())
	docMapping.AddFieldMappingsAt("wordcount", bleve.NewNumericFieldMapping())
	docMapping.AddFieldMappingsAt("popularity_score", bleve.NewNumericFieldMapping())
	docMapping.AddFieldMappingsAt("combined_score", bleve.NewNumericFieldMapping())

	im.AddDocumentMapping("article", docMapping)
	im.DefaultType = "article"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveStore{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveStore{index: index}, nil
}

// Index adds or replaces the article document.
func (b *BleveStore) Index(ctx context.Context, a *models.Article) error {
	tagNames := a.TagNames()
	doc := &bleveArticle{
		Title:           a.Title,
		Subtitle:        a.Subtitle,
		Content:         a.Content,
		Tags:            tagNames,
		TagsText:        strings.Join(tagNames, " "),
		Type:            string(a.Type),
		PostDate:        a.PostDate,
		Wordcount:       float64(a.Wordcount),
		PopularityScore: a.PopularityScore,
		CombinedScore:   a.CombinedScore,
	}
	return b.index.Index(docID(a.ID), doc)
}

// Query executes the query spec: a boosted multi-field disjunction in full-text
// mode, match-all otherwise, with filters AND'd in, pagination, sort
// override, and optional highlights.
func (b *BleveStore) Query(ctx context.Context, spec QuerySpec) (*QueryResult, error) {
	var textQuery blevequery.Query
	if spec.MatchAll {
		textQuery = bleve.NewMatchAllQuery()
	} else {
		textQuery = buildFullTextQuery(spec.Text)
	}

	q := applyFilters(textQuery, spec)

	req := bleve.NewSearchRequestOptions(q, spec.Size, spec.From, false)
	switch spec.SortBy {
	case models.SortByPostDate:
		req.SortBy([]string{"-post_date", "-_score"})
	case models.SortByCombined:
		req.SortBy([]string{"-combined_score", "-_score"})
	}
	if spec.Highlight && !spec.MatchAll {
		req.Highlight = bleve.NewHighlightWithStyle("html")
		req.Highlight.AddField("title")
		req.Highlight.AddField("subtitle")
		req.Highlight.AddField("content")
	}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := &QueryResult{Total: int(res.Total), Hits: make([]*Hit, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		id, err := parseDocID(hit.ID)
		if err != nil {
			continue
		}
		h := &Hit{ID: id, Score: hit.Score}
		if len(hit.Fragments) > 0 {
			h.Highlight = hit.Fragments
		}
		out.Hits = append(out.Hits, h)
	}
	return out, nil
}

// CountTags returns per-tag document counts via a terms facet over the
// keyword tags field, plus the total document count.
func (b *BleveStore) CountTags(ctx context.Context) (map[string]int, int, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	req.AddFacet("tags", bleve.NewFacetRequest("tags", tagFacetSize))

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("Bleve facet search failed: %w", err)
	}

	counts := make(map[string]int)
	if facet, ok := res.Facets["tags"]; ok {
		for _, term := range facet.Terms.Terms() {
			counts[term.Term] = term.Count
		}
	}
	return counts, int(res.Total), nil
}

// MoreLikeThis ranks documents by a disjunction over the seed terms, with
// title matches boosted, excluding the seed document itself.
func (b *BleveStore) MoreLikeThis(ctx context.Context, excludeID int64, terms []string, limit int) ([]*Hit, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	queries := make([]blevequery.Query, 0, len(terms)*2)
	for _, term := range terms {
		tq := bleve.NewMatchQuery(term)
		tq.SetField("title")
		tq.SetBoost(2.0)
		queries = append(queries, tq)
		cq := bleve.NewMatchQuery(term)
		cq.SetField("content")
		queries = append(queries, cq)
	}

	q := bleve.NewBooleanQuery()
	q.AddMust(bleve.NewDisjunctionQuery(queries...))
	q.AddMustNot(bleve.NewDocIDQuery([]string{docID(excludeID)}))

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve more-like-this search failed: %w", err)
	}

	hits := make([]*Hit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := parseDocID(hit.ID)
		if err != nil || id == excludeID {
			continue
		}
		hits = append(hits, &Hit{ID: id, Score: hit.Score})
	}
	return hits, nil
}

// Delete removes a document by article id.
func (b *BleveStore) Delete(ctx context.Context, id int64) error {
	return b.index.Delete(docID(id))
}

// Count returns the total number of indexed documents.
func (b *BleveStore) Count(ctx context.Context) (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveStore) Close() error {
	return b.index.Close()
}

// buildFullTextQuery builds the boosted multi-field disjunction for the
// fused query text.
func buildFullTextQuery(text string) blevequery.Query {
	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(titleBoost)

	subtitle := bleve.NewMatchQuery(text)
	subtitle.SetField("subtitle")
	subtitle.SetBoost(subtitleBoost)

	tags := bleve.NewMatchQuery(text)
	tags.SetField("tags_text")
	tags.SetBoost(tagsBoost)

	content := bleve.NewMatchQuery(text)
	content.SetField("content")

	return bleve.NewDisjunctionQuery(title, subtitle, tags, content)
}

// applyFilters AND's the structured filters with the text query.
func applyFilters(textQuery blevequery.Query, spec QuerySpec) blevequery.Query {
	var filters []blevequery.Query
	if spec.Type != "" {
		tq := bleve.NewTermQuery(spec.Type)
		tq.SetField("type")
		filters = append(filters, tq)
	}
	if !spec.DateFrom.IsZero() || !spec.DateTo.IsZero() {
		start := spec.DateFrom
		if start.IsZero() {
			start = time.Unix(0, 0).UTC()
		}
		end := spec.DateTo
		if end.IsZero() {
			end = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		dq := bleve.NewDateRangeQuery(start, end)
		dq.SetField("post_date")
		filters = append(filters, dq)
	}
	if len(filters) == 0 {
		return textQuery
	}
	q := bleve.NewBooleanQuery()
	q.AddMust(textQuery)
	q.AddMust(filters...)
	return q
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseDocID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
