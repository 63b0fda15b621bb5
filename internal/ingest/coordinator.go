// Package ingest runs batch article ingestion: validation, content
// fingerprinting, the dedup gate, scoring, and persistence.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kiji/internal/dedup"
	"github.com/hyperjump/kiji/internal/docstore"
	"github.com/hyperjump/kiji/internal/fingerprint"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/scoring"
	"github.com/hyperjump/kiji/internal/storage"
	"go.uber.org/zap"
)

// Coordinator ingests article batches into storage and the document store.
type Coordinator struct {
	storage storage.ArticleStore
	docs    docstore.Store
	scorer  *scoring.Engine
	workers int
	logger  *zap.Logger // optional; when set, logs per-batch events
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets a logger for batch progress output.
func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator with the given dependencies.
// workers bounds the concurrent score-and-persist stage; values below 1
// are treated as 1.
func NewCoordinator(
	store storage.ArticleStore,
	docs docstore.Store,
	scorer *scoring.Engine,
	workers int,
	opts ...CoordinatorOption,
) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	c := &Coordinator{
		storage: store,
		docs:    docs,
		scorer:  scorer,
		workers: workers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IngestBatch processes the batch and returns one outcome per input article,
// in input order. A failing article never aborts the batch: its outcome
// carries the error and the remaining articles proceed. The dedup gate runs
// serially in input order, so duplicates within the batch resolve in favor of
// the earlier article; scoring and persistence then run on a bounded worker
// pool.
func (c *Coordinator) IngestBatch(ctx context.Context, articles []*models.Article) (*models.IngestReport, error) {
	start := time.Now()
	report := &models.IngestReport{
		RunID:    uuid.New().String(),
		Outcomes: make([]models.IngestionOutcome, len(articles)),
	}

	identities, err := c.storage.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load indexed identities: %w", err)
	}
	set := dedup.NewWorkingSet()
	set.Seed(identities)

	// Gate stage: input order decides which of two in-batch duplicates wins.
	admitted := make([]int, 0, len(articles))
	for i, a := range articles {
		if err := validate(a); err != nil {
			report.Outcomes[i] = models.IngestionOutcome{
				ID:     inputID(a),
				Status: models.OutcomeError,
				Error:  err.Error(),
			}
			continue
		}
		identity := fingerprint.Fingerprint(a)
		a.ContentHash = identity.ContentHash
		switch set.Admit(identity) {
		case dedup.SkippedDuplicateID:
			report.Outcomes[i] = models.IngestionOutcome{
				ID:          a.ID,
				ContentHash: a.ContentHash,
				Status:      models.OutcomeDuplicateID,
			}
		case dedup.SkippedDuplicateHash:
			report.Outcomes[i] = models.IngestionOutcome{
				ID:          a.ID,
				ContentHash: a.ContentHash,
				Status:      models.OutcomeDuplicateHash,
			}
		default:
			admitted = append(admitted, i)
		}
	}

	// Persist stage: score then write, bounded by the worker pool. An
	// admitted identity stays registered even if persistence fails, so a
	// same-hash article later in the batch is still skipped.
	now := time.Now()
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)
	for _, i := range admitted {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			a := articles[i]
			c.scorer.Score(a, now)
			if err := c.persist(ctx, a); err != nil {
				report.Outcomes[i] = models.IngestionOutcome{
					ID:          a.ID,
					ContentHash: a.ContentHash,
					Status:      models.OutcomeError,
					Error:       err.Error(),
				}
				if c.logger != nil {
					c.logger.Warn("failed to persist article",
						zap.Int64("id", a.ID),
						zap.Error(err))
				}
				return
			}
			report.Outcomes[i] = models.IngestionOutcome{
				ID:          a.ID,
				ContentHash: a.ContentHash,
				Status:      models.OutcomeAdmitted,
			}
		}(i)
	}
	wg.Wait()

	report.Tally()
	report.ElapsedMillis = time.Since(start).Milliseconds()
	if c.logger != nil {
		c.logger.Info("batch ingested",
			zap.String("run_id", report.RunID),
			zap.Int("total", report.Total),
			zap.Int("admitted", report.Admitted),
			zap.Int("skipped_duplicate_id", report.DuplicateIDs),
			zap.Int("skipped_duplicate_hash", report.DuplicateHash),
			zap.Int("errors", report.Errors),
			zap.Int64("elapsed_ms", report.ElapsedMillis))
	}
	return report, nil
}

// persist writes the scored article to durable storage and the document
// store. Storage is written first: it is the source of truth the index is
// hydrated from.
func (c *Coordinator) persist(ctx context.Context, a *models.Article) error {
	if err := c.storage.SaveArticle(ctx, a); err != nil {
		return fmt.Errorf("failed to store article: %w", err)
	}
	if err := c.docs.Index(ctx, a); err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}
	return nil
}

// validate rejects articles that cannot be fingerprinted or ranked.
func validate(a *models.Article) error {
	if a == nil {
		return fmt.Errorf("article is nil")
	}
	if a.ID <= 0 {
		return fmt.Errorf("article id must be positive, got %d", a.ID)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("article %d has an empty title", a.ID)
	}
	if a.Wordcount < 0 {
		return fmt.Errorf("article %d has negative wordcount %d", a.ID, a.Wordcount)
	}
	return nil
}

// inputID extracts the id for error outcomes without assuming the article
// passed validation.
func inputID(a *models.Article) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}
