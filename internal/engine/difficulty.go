package engine

import (
	"math"

	"github.com/samber/lo"

	"github.com/eslsoft/wordpace/internal/entity"
)

// WordStats aggregates attempt-log history for one word record. The
// difficulty scorer consumes it in batch, outside the per-attempt loop.
type WordStats struct {
	Attempts      int32
	Mistakes      int32
	RecentResults []bool // newest first, at most ten entries
	DailyMistakes []int32
	MistakeTypes  []string
}

// DifficultyWeights is the blend applied to the difficulty components.
// The five weights sum to 1.0.
type DifficultyWeights struct {
	MistakeRate float64
	Consistency float64
	Recent      float64
	Mastery     float64
	Status      float64
}

// DefaultDifficultyThreshold triggers schedule correction when reached.
const DefaultDifficultyThreshold float64 = 70

// diversityPenaltyStep and diversityPenaltyCap bound the surcharge for
// words failed in many distinct ways.
const (
	diversityPenaltyStep float64 = 5
	diversityPenaltyCap  float64 = 20
)

var statusDifficulty = map[entity.LearningStatus]float64{
	entity.StatusNotStarted:  30,
	entity.StatusInProgress:  50,
	entity.StatusLearned:     20,
	entity.StatusNeedsReview: 80,
	entity.StatusDifficult:   90,
}

// DifficultyScorer computes the composite 0-100 difficulty score used for
// bulk schedule correction.
type DifficultyScorer struct {
	weights  DifficultyWeights
	defaults Defaults
}

// NewDifficultyScorer returns a scorer with the standard blend.
func NewDifficultyScorer() *DifficultyScorer {
	return &DifficultyScorer{
		weights: DifficultyWeights{
			MistakeRate: 0.30,
			Consistency: 0.20,
			Recent:      0.25,
			Mastery:     0.15,
			Status:      0.10,
		},
		defaults: DefaultPolicy(),
	}
}

// Score blends mistake rate, consistency, recent performance, mastery, and
// status into [0,100]. Monotonically non-decreasing in mistake rate.
func (s *DifficultyScorer) Score(rec *entity.WordRecord, stats WordStats) float64 {
	mistakeRate := s.mistakeRate(stats)
	consistency := s.consistency(stats)
	recent := s.recentPerformance(stats)

	score := mistakeRate*s.weights.MistakeRate +
		(100-consistency)*s.weights.Consistency +
		(100-recent)*s.weights.Recent +
		(100-float64(rec.MasteryScore))*s.weights.Mastery +
		statusDifficulty[rec.Status]*s.weights.Status

	score += math.Min(diversityPenaltyStep*float64(distinctMistakeTypes(stats)), diversityPenaltyCap)

	return clamp(score, 0, 100)
}

// Adjustment is the planned correction for one word whose difficulty score
// crossed the threshold.
type Adjustment struct {
	Score      float64
	LevelDelta int32
	Reason     string
}

// PlanAdjustment decides whether and how hard to correct the word's
// schedule. The SRS regression itself (interval halving) is applied by the
// caller via Schedule with isCorrect=false.
func (s *DifficultyScorer) PlanAdjustment(rec *entity.WordRecord, stats WordStats, threshold float64) (Adjustment, bool) {
	if threshold <= 0 {
		threshold = DefaultDifficultyThreshold
	}

	score := s.Score(rec, stats)
	if score < threshold {
		return Adjustment{Score: score}, false
	}

	mistakeRate := s.mistakeRate(stats)
	consistency := s.consistency(stats)

	adj := Adjustment{Score: score}
	switch {
	case mistakeRate > 60 && consistency < 40:
		adj.LevelDelta = -2
		adj.Reason = "high mistake rate with inconsistent performance"
	case mistakeRate > 40:
		adj.LevelDelta = -1
		adj.Reason = "elevated mistake rate"
	default:
		adj.Reason = "difficulty above threshold, interval shortened"
	}
	return adj, true
}

func (s *DifficultyScorer) mistakeRate(stats WordStats) float64 {
	if stats.Attempts <= 0 {
		return 0
	}
	return float64(stats.Mistakes) / float64(stats.Attempts) * 100
}

// consistency is 100 minus the normalized variance of daily mistake counts.
// Words with too few attempts get the neutral default.
func (s *DifficultyScorer) consistency(stats WordStats) float64 {
	if stats.Attempts < s.defaults.MinAttemptsForStats || len(stats.DailyMistakes) == 0 {
		return s.defaults.ConsistencyScore
	}

	var sum float64
	for _, m := range stats.DailyMistakes {
		sum += float64(m)
	}
	mean := sum / float64(len(stats.DailyMistakes))

	var variance float64
	for _, m := range stats.DailyMistakes {
		d := float64(m) - mean
		variance += d * d
	}
	variance /= float64(len(stats.DailyMistakes))

	return clamp(100-variance*20, 0, 100)
}

func (s *DifficultyScorer) recentPerformance(stats WordStats) float64 {
	recent := stats.RecentResults
	if len(recent) > 10 {
		recent = recent[:10]
	}
	if len(recent) == 0 {
		return s.defaults.RecentPerformance
	}
	correct := lo.Count(recent, true)
	return float64(correct) / float64(len(recent)) * 100
}

func distinctMistakeTypes(stats WordStats) int {
	types := lo.Uniq(lo.Filter(stats.MistakeTypes, func(t string, _ int) bool {
		return t != ""
	}))
	return len(types)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
