// Package watcher watches the crawler spool directory and ingests batch
// files as they appear.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

// IngestFunc processes one batch of articles.
type IngestFunc func(ctx context.Context, articles []*models.Article) (*models.IngestReport, error)

// SpoolWatcher watches a directory for *.json batch files dropped by the
// crawler, ingests each file once it stops changing, and renames it with the
// processed suffix so a restart does not re-ingest it.
type SpoolWatcher struct {
	dir      string
	suffix   string
	ingest   IngestFunc
	debounce time.Duration

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger // optional; when set, logs spool events
}

// SpoolWatcherOption configures a SpoolWatcher.
type SpoolWatcherOption func(*SpoolWatcher)

// WithLogger sets a logger for spool event output.
func WithLogger(l *zap.Logger) SpoolWatcherOption {
	return func(w *SpoolWatcher) { w.logger = l }
}

// NewSpoolWatcher creates a spool watcher over dir. Processed files are
// renamed with suffix appended.
func NewSpoolWatcher(dir, suffix string, ingest IngestFunc, opts ...SpoolWatcherOption) *SpoolWatcher {
	w := &SpoolWatcher{
		dir:         dir,
		suffix:      suffix,
		ingest:      ingest,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Batch files already present in the spool are
// processed first. Runs until ctx is cancelled or Stop is called.
func (w *SpoolWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create spool directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("spool watcher starting", zap.String("dir", w.dir))
	}
	w.processExisting(ctx)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *SpoolWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, t := range w.debounceMap {
			t.Stop()
			delete(w.debounceMap, path)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Unlock()
	})
}

func (w *SpoolWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("spool watcher error", zap.Error(err))
			}
		}
	}
}

func (w *SpoolWatcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !isBatchFile(ev.Name, w.suffix) {
		return
	}
	switch ev.Op {
	case fsnotify.Create, fsnotify.Write:
		w.debounceProcess(ctx, ev.Name)
	case fsnotify.Remove, fsnotify.Rename:
		w.cancelDebounce(ev.Name)
	}
}

// processExisting handles batch files that arrived while the server was down.
func (w *SpoolWatcher) processExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("failed to scan spool directory", zap.Error(err))
		}
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if isBatchFile(path, w.suffix) {
			w.processFile(ctx, path)
		}
	}
}

// debounceProcess delays processing until the file has been quiet for the
// debounce window, so a half-written batch is not parsed.
func (w *SpoolWatcher) debounceProcess(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.processFile(ctx, path)
	})
}

func (w *SpoolWatcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// processFile reads one batch file, ingests it, and marks it processed. A
// file that fails to parse or ingest is left in place for inspection.
func (w *SpoolWatcher) processFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("failed to read batch file", zap.String("path", path), zap.Error(err))
		}
		return
	}
	var articles []*models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		if w.logger != nil {
			w.logger.Warn("failed to parse batch file", zap.String("path", path), zap.Error(err))
		}
		return
	}
	report, err := w.ingest(ctx, articles)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("failed to ingest batch file", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("spool batch processed",
			zap.String("path", path),
			zap.String("run_id", report.RunID),
			zap.Int("total", report.Total),
			zap.Int("admitted", report.Admitted))
	}
	if err := os.Rename(path, path+w.suffix); err != nil && w.logger != nil {
		w.logger.Warn("failed to mark batch file processed", zap.String("path", path), zap.Error(err))
	}
}

// isBatchFile reports whether path is an unprocessed JSON batch file.
func isBatchFile(path, suffix string) bool {
	if suffix != "" && strings.HasSuffix(path, suffix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(path), ".json")
}
