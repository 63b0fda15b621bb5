package config

import "github.com/hyperjump/kiji/internal/scoring"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kiji/data/db/articles.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kiji/data/indices/bleve"
	}
	if cfg.Ingest.BatchWorkers == 0 {
		cfg.Ingest.BatchWorkers = 8
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.MoreLikeThisMaxTerms == 0 {
		cfg.Search.MoreLikeThisMaxTerms = 25
	}
	if cfg.Search.TrendingCandidates == 0 {
		cfg.Search.TrendingCandidates = 200
	}
	if cfg.Search.SnippetLength == 0 {
		cfg.Search.SnippetLength = 300
	}
	if cfg.Scoring == nil {
		cfg.Scoring = scoring.DefaultConfig()
	} else {
		def := scoring.DefaultConfig()
		if cfg.Scoring.PopularityWeight == 0 && cfg.Scoring.FreshnessWeight == 0 && cfg.Scoring.QualityWeight == 0 {
			cfg.Scoring.PopularityWeight = def.PopularityWeight
			cfg.Scoring.FreshnessWeight = def.FreshnessWeight
			cfg.Scoring.QualityWeight = def.QualityWeight
		}
		if cfg.Scoring.ReactionFactor == 0 {
			cfg.Scoring.ReactionFactor = def.ReactionFactor
		}
		if cfg.Scoring.FreshnessDecayPerDay == 0 {
			cfg.Scoring.FreshnessDecayPerDay = def.FreshnessDecayPerDay
		}
		if cfg.Scoring.TypeBonuses == nil {
			cfg.Scoring.TypeBonuses = def.TypeBonuses
		}
	}
	if cfg.Spool.ProcessedSuffix == "" {
		cfg.Spool.ProcessedSuffix = ".done"
	}
}
