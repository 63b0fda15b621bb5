// Package config provides configuration loading and structs for the Kiji server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kiji/internal/scoring"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool            `yaml:"debug"`
	Server  ServerConfig    `yaml:"server"`
	Storage StorageConfig   `yaml:"storage"`
	Ingest  IngestConfig    `yaml:"ingest"`
	Search  SearchConfig    `yaml:"search"`
	Scoring *scoring.Config `yaml:"scoring"`
	Spool   SpoolConfig     `yaml:"spool"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the document index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// IngestConfig holds batch ingestion settings.
type IngestConfig struct {
	// BatchWorkers bounds the parallelism of the score+persist stage.
	BatchWorkers int `yaml:"batch_workers"`
}

// SearchConfig holds search, aggregation, and similarity settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	// MoreLikeThisMaxTerms caps the seed terms used for similarity retrieval.
	MoreLikeThisMaxTerms int `yaml:"more_like_this_max_terms"`
	// TrendingCandidates bounds how many window hits are scored for the
	// engagement trending mode.
	TrendingCandidates int `yaml:"trending_candidates"`
	// SnippetLength is the content preview length in search results.
	SnippetLength int `yaml:"snippet_length"`
}

// SpoolConfig holds crawler spool directory watch settings.
type SpoolConfig struct {
	// Directory is where the crawler drops JSON batch files. Empty disables
	// the spool watcher.
	Directory string `yaml:"directory"`
	// ProcessedSuffix is appended to batch files after ingestion.
	ProcessedSuffix string `yaml:"processed_suffix"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	if cfg.Spool.Directory != "" {
		cfg.Spool.Directory = expandPath(cfg.Spool.Directory, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
