package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug not parsed")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults wrong: %+v", cfg.Server)
	}
	if cfg.Ingest.BatchWorkers != 8 {
		t.Errorf("batch_workers default = %d, want 8", cfg.Ingest.BatchWorkers)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 {
		t.Errorf("search defaults wrong: %+v", cfg.Search)
	}
	if cfg.Search.MoreLikeThisMaxTerms != 25 {
		t.Errorf("more_like_this_max_terms default = %d, want 25", cfg.Search.MoreLikeThisMaxTerms)
	}
	if cfg.Scoring == nil {
		t.Fatal("scoring defaults not applied")
	}
	if cfg.Scoring.PopularityWeight != 0.4 || cfg.Scoring.FreshnessWeight != 0.3 || cfg.Scoring.QualityWeight != 0.3 {
		t.Errorf("scoring weights wrong: %+v", cfg.Scoring)
	}
	if cfg.Spool.ProcessedSuffix != ".done" {
		t.Errorf("processed_suffix default = %q", cfg.Spool.ProcessedSuffix)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
ingest:
  batch_workers: 2
search:
  default_limit: 5
scoring:
  popularity_weight: 0.5
  freshness_weight: 0.25
  quality_weight: 0.25
spool:
  directory: ./spool
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server override wrong: %+v", cfg.Server)
	}
	if cfg.Ingest.BatchWorkers != 2 || cfg.Search.DefaultLimit != 5 {
		t.Error("overrides not applied")
	}
	if cfg.Scoring.PopularityWeight != 0.5 {
		t.Errorf("scoring override wrong: %+v", cfg.Scoring)
	}
	// Unset scoring knobs still get defaults.
	if cfg.Scoring.FreshnessDecayPerDay != 0.5 {
		t.Errorf("freshness_decay_per_day default missing: %f", cfg.Scoring.FreshnessDecayPerDay)
	}
	if cfg.Spool.Directory == "" || !filepath.IsAbs(cfg.Spool.Directory) {
		t.Errorf("spool directory not expanded: %q", cfg.Spool.Directory)
	}
}

func TestLoad_ExpandsRelativePaths(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: ./data/articles.db
  bleve_index_path: ./data/bleve
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	configDir := filepath.Dir(path)
	if !strings.HasPrefix(cfg.Storage.DatabasePath, configDir) {
		t.Errorf("database_path = %q, want under %q", cfg.Storage.DatabasePath, configDir)
	}
	if !strings.HasPrefix(cfg.Storage.BleveIndexPath, configDir) {
		t.Errorf("bleve_index_path = %q, want under %q", cfg.Storage.BleveIndexPath, configDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
