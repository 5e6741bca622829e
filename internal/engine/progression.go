package engine

import (
	"math"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
)

// AttemptResult carries the graded outcome fed into the progression step.
type AttemptResult struct {
	IsCorrect      bool
	Accuracy       int32
	ResponseTimeMs int64
}

// Progression advances or regresses a word's exercise level based on the
// rolling success rate. Thresholds are exported fields so batch jobs and
// tests can tune them; zero values are replaced by NewProgression.
type Progression struct {
	SuccessThreshold     float64
	AdvanceMinAttempts   int32
	RegressMinAttempts   int32
	DifficultThreshold   float64
	DifficultMinAttempts int32
	ReviewMinAttempts    int32

	defaults Defaults
}

// NewProgression returns the state machine with standard thresholds.
func NewProgression() *Progression {
	return &Progression{
		SuccessThreshold:     0.6,
		AdvanceMinAttempts:   2,
		RegressMinAttempts:   3,
		DifficultThreshold:   0.4,
		DifficultMinAttempts: 5,
		ReviewMinAttempts:    3,
		defaults:             DefaultPolicy(),
	}
}

// Apply folds one attempt into the record: counters, streak, level, status,
// and mastery. It always yields a valid state; level stays within
// [MinProgressionLevel, MaxProgressionLevel].
func (p *Progression) Apply(rec *entity.WordRecord, res AttemptResult, now time.Time) {
	rec.ReviewCount++
	if res.IsCorrect {
		rec.CorrectCount++
		rec.CorrectStreak++
	} else {
		rec.CorrectStreak = 0
		rec.MistakeCount++
	}
	ok := res.IsCorrect
	rec.LastAnswerOK = &ok

	if res.ResponseTimeMs > 0 {
		n := int64(rec.ReviewCount)
		rec.AvgResponseMs = (rec.AvgResponseMs*(n-1) + res.ResponseTimeMs) / n
	}

	rate := rec.SuccessRate()
	switch {
	case res.IsCorrect &&
		rec.ReviewCount >= p.AdvanceMinAttempts &&
		rate >= p.SuccessThreshold &&
		rec.ProgressionLevel < entity.MaxProgressionLevel:
		rec.ProgressionLevel++
	case !res.IsCorrect &&
		rec.ReviewCount >= p.RegressMinAttempts &&
		rate < p.SuccessThreshold &&
		rec.ProgressionLevel > entity.MinProgressionLevel:
		rec.ProgressionLevel--
	}

	rec.Status = p.statusFor(rec.ProgressionLevel, rate, rec.ReviewCount)
	rec.MasteryScore = p.masteryScore(rate*100, rec.CorrectCount, rec.AvgResponseMs, rec.ReviewCount)
	rec.UpdatedAt = now
}

// statusFor derives the learning status. Struggle overrides win over the
// level-based mapping.
func (p *Progression) statusFor(level int32, rate float64, attempts int32) entity.LearningStatus {
	switch {
	case rate < p.DifficultThreshold && attempts >= p.DifficultMinAttempts:
		return entity.StatusDifficult
	case rate < p.SuccessThreshold && attempts >= p.ReviewMinAttempts:
		return entity.StatusNeedsReview
	case level == entity.MinProgressionLevel:
		return entity.StatusNotStarted
	case level == entity.MaxProgressionLevel && rate >= p.SuccessThreshold:
		return entity.StatusLearned
	case level == entity.MaxProgressionLevel:
		return entity.StatusInProgress
	default:
		return entity.StatusInProgress
	}
}

// masteryScore blends accuracy, answer volume, and speed into 0-100. The
// blend is monotonic: higher success rate or more correct answers never
// lower the score.
func (p *Progression) masteryScore(rate100 float64, correct int32, avgResponseMs int64, attempts int32) int32 {
	accuracyPart := rate100 * 0.6

	volume := math.Min(float64(correct)/20, 1)
	volumePart := volume * 25

	respSec := p.defaults.ResponseTimeSec
	if attempts > 0 && avgResponseMs > 0 {
		respSec = float64(avgResponseMs) / 1000
	}
	speed := (20 - respSec) / 20
	if speed < 0 {
		speed = 0
	}
	if speed > 1 {
		speed = 1
	}
	speedPart := speed * 15

	score := math.Round(accuracyPart + volumePart + speedPart)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int32(score)
}
