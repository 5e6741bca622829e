package engine

import (
	"math"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
)

// baseIntervalHours maps progression level to the base review delay.
// Levels beyond the table clamp to the last entry.
var baseIntervalHours = [...]int32{1, 4, 8, 24, 72, 168}

const (
	// streakBonusStep grows the interval per consecutive correct answer.
	streakBonusStep = 0.2
	// streakBonusCap bounds the streak bonus at double the base interval.
	streakBonusCap = 1.0
	// failureFactor halves the interval after an incorrect answer.
	failureFactor = 0.5
)

// Interval is a computed review delay and its absolute due time.
type Interval struct {
	Hours        int32
	NextReviewAt time.Time
}

// ComputeInterval derives the next review delay from the level, the
// correctness of the latest answer, and the consecutive-correct streak.
// The result is always at least entity.MinIntervalHours.
func ComputeInterval(level int32, isCorrect bool, streak int32, now time.Time) Interval {
	base := baseFor(level)

	var hours float64
	if isCorrect {
		bonus := math.Min(float64(streak)*streakBonusStep, streakBonusCap)
		hours = math.Round(float64(base) * (1 + bonus))
	} else {
		hours = math.Round(float64(base) * failureFactor)
	}
	if hours < float64(entity.MinIntervalHours) {
		hours = float64(entity.MinIntervalHours)
	}

	h := int32(hours)
	return Interval{
		Hours:        h,
		NextReviewAt: now.Add(time.Duration(h) * time.Hour),
	}
}

// Schedule applies the computed interval to the record's review timing and
// stamps the review time.
func Schedule(rec *entity.WordRecord, isCorrect bool, now time.Time) Interval {
	iv := ComputeInterval(rec.ProgressionLevel, isCorrect, rec.CorrectStreak, now)
	rec.Review.IntervalHours = iv.Hours
	next := iv.NextReviewAt
	rec.Review.NextReviewAt = &next
	last := now
	rec.Review.LastReviewedAt = &last
	return iv
}

func baseFor(level int32) int32 {
	if level < 0 {
		level = 0
	}
	if int(level) >= len(baseIntervalHours) {
		level = int32(len(baseIntervalHours) - 1)
	}
	return baseIntervalHours[level]
}
