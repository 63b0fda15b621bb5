package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/kiji/internal/models"
)

type captureIngest struct {
	mu      sync.Mutex
	batches [][]*models.Article
}

func (c *captureIngest) ingest(ctx context.Context, articles []*models.Article) (*models.IngestReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, articles)
	report := &models.IngestReport{RunID: "test"}
	for _, a := range articles {
		report.Outcomes = append(report.Outcomes, models.IngestionOutcome{ID: a.ID, Status: models.OutcomeAdmitted})
	}
	report.Tally()
	return report, nil
}

func (c *captureIngest) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func writeBatch(t *testing.T, dir, name string, articles []*models.Article) string {
	t.Helper()
	data, err := json.Marshal(articles)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpoolWatcher_ProcessesExistingOnStart(t *testing.T) {
	dir := t.TempDir()
	batch := []*models.Article{{ID: 1, Title: "One"}}
	path := writeBatch(t, dir, "batch1.json", batch)

	cap := &captureIngest{}
	w := NewSpoolWatcher(dir, ".done", cap.ingest)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if cap.count() != 1 {
		t.Fatalf("ingest called %d times, want 1", cap.count())
	}
	if len(cap.batches[0]) != 1 || cap.batches[0][0].ID != 1 {
		t.Errorf("batch content wrong: %+v", cap.batches[0])
	}
	if _, err := os.Stat(path + ".done"); err != nil {
		t.Errorf("processed file not renamed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("original file still present")
	}
}

func TestSpoolWatcher_SkipsProcessedAndNonJSON(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "old.json.done", []*models.Article{{ID: 9}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	cap := &captureIngest{}
	w := NewSpoolWatcher(dir, ".done", cap.ingest)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if cap.count() != 0 {
		t.Errorf("ingest called %d times for ineligible files", cap.count())
	}
}

func TestSpoolWatcher_ProcessesDroppedFile(t *testing.T) {
	dir := t.TempDir()
	cap := &captureIngest{}
	w := NewSpoolWatcher(dir, ".done", cap.ingest)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeBatch(t, dir, "incoming.json", []*models.Article{{ID: 2, Title: "Two"}})

	deadline := time.Now().Add(5 * time.Second)
	for cap.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if cap.count() != 1 {
		t.Fatalf("dropped file not ingested")
	}
}

func TestSpoolWatcher_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	w := NewSpoolWatcher(dir, ".done", (&captureIngest{}).ingest)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("spool directory not created: %v", err)
	}
}

func TestIsBatchFile(t *testing.T) {
	if !isBatchFile("/spool/a.json", ".done") {
		t.Error("plain json should be eligible")
	}
	if isBatchFile("/spool/a.json.done", ".done") {
		t.Error("processed file should be skipped")
	}
	if isBatchFile("/spool/a.txt", ".done") {
		t.Error("non-json should be skipped")
	}
	if !isBatchFile("/spool/A.JSON", ".done") {
		t.Error("extension match should be case-insensitive")
	}
}
