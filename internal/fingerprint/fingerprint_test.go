package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash("Title", "Sub", "Body")
	b := ContentHash("Title", "Sub", "Body")
	if a != b {
		t.Errorf("same inputs hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestContentHash_ConcatenationOrder(t *testing.T) {
	// The digest is over the plain concatenation, so it must equal a
	// hand-computed SHA-256 of the joined fields.
	sum := sha256.Sum256([]byte("TitleSubBody"))
	want := hex.EncodeToString(sum[:])
	if got := ContentHash("Title", "Sub", "Body"); got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
}

func TestContentHash_FieldSensitivity(t *testing.T) {
	base := ContentHash("Title", "Sub", "Body")
	if ContentHash("Title2", "Sub", "Body") == base {
		t.Error("title change did not change hash")
	}
	if ContentHash("Title", "Sub2", "Body") == base {
		t.Error("subtitle change did not change hash")
	}
	if ContentHash("Title", "Sub", "Body2") == base {
		t.Error("content change did not change hash")
	}
}

func TestContentHash_AbsentFieldsAreEmpty(t *testing.T) {
	if ContentHash("Title", "", "Body") != ContentHash("Title", "", "Body") {
		t.Error("absent subtitle not stable")
	}
	// Empty everything still hashes (the digest of the empty string).
	if ContentHash("", "", "") == "" {
		t.Error("empty article should still produce a hash")
	}
}

func TestFingerprint_IgnoresNonTextFields(t *testing.T) {
	a := &models.Article{ID: 1, Title: "T", Subtitle: "S", Content: "C",
		Tags: []models.Tag{{Name: "AI", Slug: "ai"}}, Wordcount: 500}
	b := &models.Article{ID: 2, Title: "T", Subtitle: "S", Content: "C"}
	fa, fb := Fingerprint(a), Fingerprint(b)
	if fa.ContentHash != fb.ContentHash {
		t.Error("hash should depend only on title, subtitle, and content")
	}
	if fa.ID != 1 || fb.ID != 2 {
		t.Error("identity should carry the article id")
	}
}
