// Package storage defines the durable persistence interface for articles.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kiji/internal/models"
)

// ErrNotFound is returned when an article id is not present in the durable index.
var ErrNotFound = errors.New("article not found")

// ArticleStore persists admitted articles and their identities. It is the
// source of truth for deduplication across batches.
type ArticleStore interface {
	// SaveArticle inserts an admitted article with its computed scores.
	SaveArticle(ctx context.Context, a *models.Article) error
	// GetArticle returns an article by id, or ErrNotFound.
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	// ListIdentities returns the (id, content_hash) pairs of every persisted
	// article. Used to seed the dedup working set at batch start.
	ListIdentities(ctx context.Context) ([]models.Identity, error)
	// DeleteArticle removes an article by id.
	DeleteArticle(ctx context.Context, id int64) error
	// CountArticles returns the number of persisted articles.
	CountArticles(ctx context.Context) (int64, error)

	Close() error
}
