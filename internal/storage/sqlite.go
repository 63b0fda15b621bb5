// Package storage provides SQLite implementation of the ArticleStore interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kiji/internal/models"
)

// SQLiteStore implements ArticleStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY,
		content_hash TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		subtitle TEXT,
		content TEXT,
		post_date TIMESTAMP NOT NULL,
		type TEXT NOT NULL,
		wordcount INTEGER NOT NULL,
		tags TEXT,
		reactions TEXT,
		local_images TEXT,
		popularity_score REAL NOT NULL,
		freshness_score REAL NOT NULL,
		quality_score REAL NOT NULL,
		combined_score REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_articles_post_date ON articles(post_date);
	CREATE INDEX IF NOT EXISTS idx_articles_combined_score ON articles(combined_score);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveArticle inserts an article row. The UNIQUE constraint on content_hash
// backs up the dedup gate at the storage layer.
func (s *SQLiteStore) SaveArticle(ctx context.Context, a *models.Article) error {
	tagsJSON, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	reactionsJSON, err := json.Marshal(a.Reactions)
	if err != nil {
		return fmt.Errorf("failed to marshal reactions: %w", err)
	}
	imagesJSON, err := json.Marshal(a.LocalImages)
	if err != nil {
		return fmt.Errorf("failed to marshal local_images: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO articles (id, content_hash, title, subtitle, content, post_date, type,
		 wordcount, tags, reactions, local_images,
		 popularity_score, freshness_score, quality_score, combined_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ContentHash, a.Title, a.Subtitle, a.Content, a.PostDate.UTC(), string(a.Type),
		a.Wordcount, string(tagsJSON), string(reactionsJSON), string(imagesJSON),
		a.PopularityScore, a.FreshnessScore, a.QualityScore, a.CombinedScore,
	)
	return err
}

// GetArticle returns an article by id, or ErrNotFound.
func (s *SQLiteStore) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var (
		a             models.Article
		articleType   string
		postDate      time.Time
		tagsJSON      sql.NullString
		reactionsJSON sql.NullString
		imagesJSON    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_hash, title, subtitle, content, post_date, type,
		 wordcount, tags, reactions, local_images,
		 popularity_score, freshness_score, quality_score, combined_score
		 FROM articles WHERE id = ?`, id,
	).Scan(&a.ID, &a.ContentHash, &a.Title, &a.Subtitle, &a.Content, &postDate, &articleType,
		&a.Wordcount, &tagsJSON, &reactionsJSON, &imagesJSON,
		&a.PopularityScore, &a.FreshnessScore, &a.QualityScore, &a.CombinedScore)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	a.PostDate = postDate
	a.Type = models.ArticleType(articleType)
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &a.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if reactionsJSON.Valid && reactionsJSON.String != "" {
		if err := json.Unmarshal([]byte(reactionsJSON.String), &a.Reactions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reactions: %w", err)
		}
	}
	if imagesJSON.Valid && imagesJSON.String != "" {
		if err := json.Unmarshal([]byte(imagesJSON.String), &a.LocalImages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal local_images: %w", err)
		}
	}
	return &a, nil
}

// ListIdentities returns every persisted (id, content_hash) pair.
func (s *SQLiteStore) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content_hash FROM articles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []models.Identity
	for rows.Next() {
		var ident models.Identity
		if err := rows.Scan(&ident.ID, &ident.ContentHash); err != nil {
			return nil, err
		}
		identities = append(identities, ident)
	}
	return identities, rows.Err()
}

// DeleteArticle removes an article by id.
func (s *SQLiteStore) DeleteArticle(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// CountArticles returns the number of persisted articles.
func (s *SQLiteStore) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
