// Package dedup decides admit/skip for article identities against the
// previously indexed corpus plus the in-flight batch.
package dedup

import (
	"sync"

	"github.com/hyperjump/kiji/internal/models"
)

// Decision is the outcome of the dedup gate for one article.
type Decision int

const (
	// Admitted means the article is new and was registered in the working set.
	Admitted Decision = iota
	// SkippedDuplicateID means the article id is already indexed.
	SkippedDuplicateID
	// SkippedDuplicateHash means another article with the same content hash
	// is already indexed.
	SkippedDuplicateHash
)

// String returns the outcome-status form of the decision.
func (d Decision) String() string {
	switch d {
	case Admitted:
		return string(models.OutcomeAdmitted)
	case SkippedDuplicateID:
		return string(models.OutcomeDuplicateID)
	case SkippedDuplicateHash:
		return string(models.OutcomeDuplicateHash)
	default:
		return "unknown"
	}
}

// WorkingSet holds the batch-local dedup state: the known ids and content
// hashes, seeded from the durable index at batch start. Admit is the only
// mutating operation and is atomic, so concurrent admissions within one
// batch cannot both pass for the same identity.
type WorkingSet struct {
	mu     sync.Mutex
	ids    map[int64]struct{}
	hashes map[string]struct{}
}

// NewWorkingSet returns an empty working set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		ids:    make(map[int64]struct{}),
		hashes: make(map[string]struct{}),
	}
}

// Seed registers identities from the durable index without gate semantics.
func (w *WorkingSet) Seed(identities []models.Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range identities {
		w.ids[id.ID] = struct{}{}
		if id.ContentHash != "" {
			w.hashes[id.ContentHash] = struct{}{}
		}
	}
}

// Admit evaluates the gate for one identity and, when admitted, registers it
// so that later articles in the same batch see it. The id check runs first
// (authoritative for exact re-delivery); the hash check catches republished
// duplicates carrying a new id.
func (w *WorkingSet) Admit(identity models.Identity) Decision {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.ids[identity.ID]; ok {
		return SkippedDuplicateID
	}
	if _, ok := w.hashes[identity.ContentHash]; ok {
		return SkippedDuplicateHash
	}
	w.ids[identity.ID] = struct{}{}
	w.hashes[identity.ContentHash] = struct{}{}
	return Admitted
}

// Len returns the number of known ids.
func (w *WorkingSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ids)
}
