package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kiji/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	posted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	in := &models.Article{
		ID:              42,
		Title:           "Attention mechanisms",
		Subtitle:        "A survey",
		Content:         "lots of text",
		PostDate:        posted,
		Type:            models.TypePaper,
		Wordcount:       3200,
		Tags:            []models.Tag{{Name: "AI", Slug: "ai"}, {Name: "ML", Slug: "ml"}},
		Reactions:       map[string]int64{"like": 12, "fire": 3},
		LocalImages:     []string{"img/fig1.png"},
		ContentHash:     "deadbeef",
		PopularityScore: 10.5,
		FreshnessScore:  90,
		QualityScore:    75,
		CombinedScore:   53.7,
	}
	if err := store.SaveArticle(ctx, in); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetArticle(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != in.Title || got.Subtitle != in.Subtitle || got.Content != in.Content {
		t.Errorf("text fields round-trip failed: %+v", got)
	}
	if !got.PostDate.Equal(posted) {
		t.Errorf("post_date = %v, want %v", got.PostDate, posted)
	}
	if got.Type != models.TypePaper || got.Wordcount != 3200 {
		t.Errorf("type/wordcount wrong: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0].Slug != "ai" {
		t.Errorf("tags wrong: %+v", got.Tags)
	}
	if got.Reactions["like"] != 12 || got.ReactionCount() != 15 {
		t.Errorf("reactions wrong: %+v", got.Reactions)
	}
	if got.CombinedScore != 53.7 || got.ContentHash != "deadbeef" {
		t.Errorf("scores/hash wrong: %+v", got)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetArticle(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DuplicateHashRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := &models.Article{ID: 1, Title: "A", PostDate: time.Now(), Type: models.TypeNewsletter, ContentHash: "same"}
	b := &models.Article{ID: 2, Title: "B", PostDate: time.Now(), Type: models.TypeNewsletter, ContentHash: "same"}
	if err := store.SaveArticle(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveArticle(ctx, b); err == nil {
		t.Error("duplicate content_hash should violate the unique constraint")
	}
}

func TestSQLiteStore_ListIdentities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		a := &models.Article{ID: i, Title: "T", PostDate: time.Now(), Type: models.TypeNewsletter,
			ContentHash: string(rune('a' + i))}
		if err := store.SaveArticle(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := store.ListIdentities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d identities, want 3", len(ids))
	}
	for _, ident := range ids {
		if ident.ID == 0 || ident.ContentHash == "" {
			t.Errorf("incomplete identity: %+v", ident)
		}
	}
}

func TestSQLiteStore_DeleteAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := &models.Article{ID: 7, Title: "T", PostDate: time.Now(), Type: models.TypeNewsletter, ContentHash: "h7"}
	if err := store.SaveArticle(ctx, a); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountArticles(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	if err := store.DeleteArticle(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountArticles(ctx); n != 0 {
		t.Errorf("count after delete = %d, want 0", n)
	}
	if _, err := store.GetArticle(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted article should be gone, err = %v", err)
	}
}
