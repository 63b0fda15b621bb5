package dedup

import (
	"sync"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func TestWorkingSet_AdmitThenDuplicateID(t *testing.T) {
	w := NewWorkingSet()
	if got := w.Admit(models.Identity{ID: 1, ContentHash: "aaa"}); got != Admitted {
		t.Fatalf("first admit = %v, want Admitted", got)
	}
	// Same id again, even with a different hash: the id check runs first.
	if got := w.Admit(models.Identity{ID: 1, ContentHash: "bbb"}); got != SkippedDuplicateID {
		t.Errorf("second admit = %v, want SkippedDuplicateID", got)
	}
}

func TestWorkingSet_DuplicateHashNewID(t *testing.T) {
	w := NewWorkingSet()
	w.Admit(models.Identity{ID: 1, ContentHash: "aaa"})
	if got := w.Admit(models.Identity{ID: 2, ContentHash: "aaa"}); got != SkippedDuplicateHash {
		t.Errorf("republished article = %v, want SkippedDuplicateHash", got)
	}
}

func TestWorkingSet_Seed(t *testing.T) {
	w := NewWorkingSet()
	w.Seed([]models.Identity{
		{ID: 10, ContentHash: "h10"},
		{ID: 11, ContentHash: "h11"},
	})
	if got := w.Admit(models.Identity{ID: 10, ContentHash: "fresh"}); got != SkippedDuplicateID {
		t.Errorf("seeded id = %v, want SkippedDuplicateID", got)
	}
	if got := w.Admit(models.Identity{ID: 12, ContentHash: "h11"}); got != SkippedDuplicateHash {
		t.Errorf("seeded hash = %v, want SkippedDuplicateHash", got)
	}
	if got := w.Admit(models.Identity{ID: 13, ContentHash: "h13"}); got != Admitted {
		t.Errorf("new identity = %v, want Admitted", got)
	}
}

func TestWorkingSet_SkipDoesNotRegister(t *testing.T) {
	w := NewWorkingSet()
	w.Admit(models.Identity{ID: 1, ContentHash: "aaa"})
	// Rejected for duplicate id; its distinct hash must not be registered.
	w.Admit(models.Identity{ID: 1, ContentHash: "ccc"})
	if got := w.Admit(models.Identity{ID: 3, ContentHash: "ccc"}); got != Admitted {
		t.Errorf("hash of a skipped article blocked admission: %v", got)
	}
}

func TestWorkingSet_ConcurrentAdmitSameIdentity(t *testing.T) {
	// Exactly one of N concurrent admissions of the same identity may win.
	w := NewWorkingSet()
	const n = 32
	var wg sync.WaitGroup
	results := make([]Decision, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = w.Admit(models.Identity{ID: 7, ContentHash: "same"})
		}(i)
	}
	wg.Wait()
	admitted := 0
	for _, r := range results {
		if r == Admitted {
			admitted++
		}
	}
	if admitted != 1 {
		t.Errorf("admitted %d times, want exactly 1", admitted)
	}
}

func TestDecision_String(t *testing.T) {
	if Admitted.String() != "admitted" {
		t.Errorf("Admitted.String() = %s", Admitted.String())
	}
	if SkippedDuplicateID.String() != "skipped_duplicate_id" {
		t.Errorf("SkippedDuplicateID.String() = %s", SkippedDuplicateID.String())
	}
	if SkippedDuplicateHash.String() != "skipped_duplicate_hash" {
		t.Errorf("SkippedDuplicateHash.String() = %s", SkippedDuplicateHash.String())
	}
}
