package repository

import (
	"context"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
)

// ListWordRecordQuery holds parameters for listing word records.
type ListWordRecordQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// WordRecordRepository abstracts persistence for scheduling state to keep
// usecases storage agnostic. Updates are conditional on the record version:
// a stale version yields entity.ErrVersionConflict so callers can re-read
// and retry, which serializes concurrent attempt submissions per record.
type WordRecordRepository interface {
	Create(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.WordRecord, error)
	FindByWord(ctx context.Context, userID int64, word string) (*entity.WordRecord, error)
	UpdateIfVersion(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error)

	// ApplyAttempt persists the mutated record and appends the attempt in
	// one transaction, so a conflict or failure records neither.
	ApplyAttempt(ctx context.Context, rec *entity.WordRecord, attempt *entity.ExerciseAttempt) (*entity.WordRecord, error)

	ListDue(ctx context.Context, userID int64, before time.Time, limit int32) ([]*entity.WordRecord, error)
	ListDueBetween(ctx context.Context, userID int64, from, to time.Time, limit int32) ([]*entity.WordRecord, error)
	ListNew(ctx context.Context, userID int64, limit int32) ([]*entity.WordRecord, error)
	List(ctx context.Context, query *ListWordRecordQuery) ([]*entity.WordRecord, int64, error)

	// ListReviewed returns every record with at least one attempt, for
	// batch difficulty reevaluation.
	ListReviewed(ctx context.Context, userID int64) ([]*entity.WordRecord, error)

	// ActiveUserIDs lists users owning reviewed records, for the periodic
	// reevaluation job.
	ActiveUserIDs(ctx context.Context) ([]int64, error)
}
