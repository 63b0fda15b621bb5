// Package scoring computes popularity, freshness, quality, and combined
// scores for admitted articles.
package scoring

import "github.com/hyperjump/kiji/internal/models"

// Config holds the score weights and scaling factors. The step-curve
// breakpoints for wordcount and age bonuses live in the engine; only the
// knobs that operators actually tune are exposed here.
type Config struct {
	// Combined score weights. Must sum to 1.
	PopularityWeight float64 `yaml:"popularity_weight"`
	FreshnessWeight  float64 `yaml:"freshness_weight"`
	QualityWeight    float64 `yaml:"quality_weight"`

	// ReactionFactor scales the raw reaction count into popularity.
	ReactionFactor float64 `yaml:"reaction_factor"`

	// FreshnessDecayPerDay is subtracted from 100 per day of age.
	FreshnessDecayPerDay float64 `yaml:"freshness_decay_per_day"`

	// TypeBonuses maps article type to its popularity bonus.
	TypeBonuses map[models.ArticleType]float64 `yaml:"type_bonuses"`
}

// DefaultConfig returns the default scoring policy.
//
// Chosen curves (documented per the score model contract):
//   - wordcount popularity bonus: 0 below 300 words, 5 from 300, 10 from
//     1000, 15 from 3000 (step, non-decreasing).
//   - time decay: 20 within 7 days, 10 within 30, 5 within 90, 0 after
//     (step, non-increasing in age).
//   - quality sub-scores: wordcount/100 capped at 40, reactions*2 capped at
//     40, tags*4 capped at 20, so quality stays within [0, 100].
func DefaultConfig() *Config {
	return &Config{
		PopularityWeight:     0.4,
		FreshnessWeight:      0.3,
		QualityWeight:        0.3,
		ReactionFactor:       0.3,
		FreshnessDecayPerDay: 0.5,
		TypeBonuses: map[models.ArticleType]float64{
			models.TypeNewsletter: 10,
			models.TypeTutorial:   8,
			models.TypePaper:      6,
		},
	}
}
