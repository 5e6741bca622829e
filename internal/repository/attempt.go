package repository

import (
	"context"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
)

// AttemptRepository is the append-only attempt log plus the read-side
// aggregations the batch difficulty scorer needs.
type AttemptRepository interface {
	Append(ctx context.Context, attempt *entity.ExerciseAttempt) (*entity.ExerciseAttempt, error)

	// ListRecent returns the newest attempts first, capped at limit.
	ListRecent(ctx context.Context, wordRecordID int64, limit int32) ([]*entity.ExerciseAttempt, error)

	// DailyMistakeCounts tallies incorrect attempts per day since the
	// given time, oldest day first.
	DailyMistakeCounts(ctx context.Context, wordRecordID int64, since time.Time) ([]entity.DailyMistakeCount, error)

	// DistinctMistakeTypes lists the non-empty mistake type labels seen
	// for a word record.
	DistinctMistakeTypes(ctx context.Context, wordRecordID int64) ([]string, error)
}
