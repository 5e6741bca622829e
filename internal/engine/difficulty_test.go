package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordpace/internal/entity"
)

func statsWithMistakes(attempts, mistakes int32) WordStats {
	return WordStats{
		Attempts:      attempts,
		Mistakes:      mistakes,
		RecentResults: []bool{true, false, true},
		DailyMistakes: []int32{1, 1, 1},
	}
}

func TestScoreMonotonicInMistakeRate(t *testing.T) {
	s := NewDifficultyScorer()
	rec := newRecord(2)
	rec.MasteryScore = 50

	prev := -1.0
	for mistakes := int32(0); mistakes <= 20; mistakes += 2 {
		got := s.Score(rec, statsWithMistakes(20, mistakes))
		assert.GreaterOrEqual(t, got, prev, "mistakes %d", mistakes)
		prev = got
	}
}

func TestScoreStaysInRange(t *testing.T) {
	s := NewDifficultyScorer()

	low := newRecord(5)
	low.Status = entity.StatusLearned
	low.MasteryScore = 100
	lowScore := s.Score(low, WordStats{Attempts: 20, RecentResults: []bool{true, true, true}})
	assert.GreaterOrEqual(t, lowScore, 0.0)

	high := newRecord(0)
	high.Status = entity.StatusDifficult
	high.MasteryScore = 0
	highScore := s.Score(high, WordStats{
		Attempts:      30,
		Mistakes:      30,
		RecentResults: []bool{false, false, false, false, false},
		DailyMistakes: []int32{8, 0, 9, 1},
		MistakeTypes:  []string{"spelling", "meaning", "order", "sound", "case"},
	})
	assert.LessOrEqual(t, highScore, 100.0)
	assert.Greater(t, highScore, lowScore)
}

func TestScoreUsesNeutralDefaultsForSparseHistory(t *testing.T) {
	s := NewDifficultyScorer()
	rec := newRecord(1)
	rec.Status = entity.StatusInProgress
	rec.MasteryScore = 50

	// Two attempts is below the stats threshold: consistency and recency
	// fall back to the neutral 50.
	got := s.Score(rec, WordStats{Attempts: 2, Mistakes: 1})

	// 0.30*50 + 0.20*50 + 0.25*50 + 0.15*50 + 0.10*50 = 50.
	assert.InDelta(t, 50.0, got, 0.001)
}

func TestScoreDiversityPenaltyIsCapped(t *testing.T) {
	s := NewDifficultyScorer()
	rec := newRecord(2)

	few := statsWithMistakes(10, 5)
	few.MistakeTypes = []string{"spelling"}

	many := statsWithMistakes(10, 5)
	many.MistakeTypes = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	capped := statsWithMistakes(10, 5)
	capped.MistakeTypes = []string{"a", "b", "c", "d"}

	assert.Equal(t, s.Score(rec, capped), s.Score(rec, many), "penalty caps at 20")
	assert.Less(t, s.Score(rec, few), s.Score(rec, many))
}

func TestPlanAdjustmentBelowThreshold(t *testing.T) {
	s := NewDifficultyScorer()
	rec := newRecord(4)
	rec.Status = entity.StatusLearned
	rec.MasteryScore = 90

	_, ok := s.PlanAdjustment(rec, WordStats{Attempts: 10, Mistakes: 1, RecentResults: []bool{true, true}}, 70)
	assert.False(t, ok)
}

func TestPlanAdjustmentSeverity(t *testing.T) {
	s := NewDifficultyScorer()
	rec := newRecord(3)
	rec.Status = entity.StatusDifficult
	rec.MasteryScore = 10

	severe := WordStats{
		Attempts:      20,
		Mistakes:      14, // 70% mistake rate
		RecentResults: []bool{false, false, false, true},
		DailyMistakes: []int32{9, 0, 8, 0}, // wildly inconsistent
		MistakeTypes:  []string{"spelling", "meaning"},
	}
	adj, ok := s.PlanAdjustment(rec, severe, 70)
	require.True(t, ok)
	assert.Equal(t, int32(-2), adj.LevelDelta)

	moderate := WordStats{
		Attempts:      20,
		Mistakes:      10, // 50% mistake rate
		RecentResults: []bool{false, false, true, false},
		DailyMistakes: []int32{1, 1, 1, 1},
		MistakeTypes:  []string{"spelling", "meaning", "order"},
	}
	adj, ok = s.PlanAdjustment(rec, moderate, 70)
	require.True(t, ok)
	assert.Equal(t, int32(-1), adj.LevelDelta)
}
