package scoring

import (
	"math"
	"time"

	"github.com/hyperjump/kiji/internal/models"
)

// Engine computes article scores. All methods are pure functions of the
// article state and the supplied "now", so recomputation is idempotent.
type Engine struct {
	config *Config
}

// NewEngine creates an engine with the given config; nil uses DefaultConfig.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{config: cfg}
}

// Score fills the four derived score fields on the article.
func (e *Engine) Score(a *models.Article, now time.Time) {
	a.PopularityScore = e.Popularity(a, now)
	a.FreshnessScore = e.Freshness(a.PostDate, now)
	a.QualityScore = e.Quality(a)
	a.CombinedScore = e.Combined(a.PopularityScore, a.FreshnessScore, a.QualityScore)
}

// Popularity is reactions*factor + wordcount bonus + time decay + type bonus,
// floored at 0 with no enforced ceiling.
func (e *Engine) Popularity(a *models.Article, now time.Time) float64 {
	score := float64(a.ReactionCount())*e.config.ReactionFactor +
		wordcountBonus(a.Wordcount) +
		timeDecay(daysSince(a.PostDate, now)) +
		e.config.TypeBonuses[a.Type]
	return math.Max(0, score)
}

// Freshness is 100 - decay*daysSince, clamped to [0, 100]. With the default
// decay of 0.5/day it reaches 0 at 200 days.
func (e *Engine) Freshness(postDate, now time.Time) float64 {
	f := 100 - daysSince(postDate, now)*e.config.FreshnessDecayPerDay
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

// Quality sums three saturating sub-scores, each bounded so the total stays
// within [0, 100].
func (e *Engine) Quality(a *models.Article) float64 {
	return wordcountScore(a.Wordcount) +
		reactionScore(a.ReactionCount()) +
		tagScore(len(a.Tags))
}

// Combined is the weighted sum of the three scores.
func (e *Engine) Combined(popularity, freshness, quality float64) float64 {
	return popularity*e.config.PopularityWeight +
		freshness*e.config.FreshnessWeight +
		quality*e.config.QualityWeight
}

// daysSince returns the fractional days between postDate and now, never negative.
func daysSince(postDate, now time.Time) float64 {
	d := now.Sub(postDate).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// wordcountBonus is a non-decreasing step function of wordcount.
func wordcountBonus(wordcount int) float64 {
	switch {
	case wordcount >= 3000:
		return 15
	case wordcount >= 1000:
		return 10
	case wordcount >= 300:
		return 5
	default:
		return 0
	}
}

// timeDecay is a non-increasing step function of article age in days.
func timeDecay(days float64) float64 {
	switch {
	case days <= 7:
		return 20
	case days <= 30:
		return 10
	case days <= 90:
		return 5
	default:
		return 0
	}
}

// wordcountScore saturates at 40 (reached at 4000 words).
func wordcountScore(wordcount int) float64 {
	return math.Min(40, float64(wordcount)*0.01)
}

// reactionScore saturates at 40 (reached at 20 reactions).
func reactionScore(reactions int64) float64 {
	return math.Min(40, float64(reactions)*2)
}

// tagScore saturates at 20 (reached at 5 tags).
func tagScore(tags int) float64 {
	return math.Min(20, float64(tags)*4)
}
