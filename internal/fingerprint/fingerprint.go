// Package fingerprint computes a stable identity for an article used by deduplication.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hyperjump/kiji/internal/models"
)

// ContentHash returns the hex SHA-256 digest of title+subtitle+content,
// concatenated in that fixed order with no separator. Absent fields
// contribute the empty string, so two articles with the same text always
// hash the same regardless of id, tags, or timestamps.
func ContentHash(title, subtitle, content string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(subtitle))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the (id, content_hash) identity for an article.
func Fingerprint(a *models.Article) models.Identity {
	return models.Identity{
		ID:          a.ID,
		ContentHash: ContentHash(a.Title, a.Subtitle, a.Content),
	}
}
