package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eslsoft/wordpace/internal/engine"
	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
	"github.com/eslsoft/wordpace/pkg/accuracy"
)

// SubmitAnswerInput is the per-attempt payload from the answer entrypoint.
type SubmitAnswerInput struct {
	WordRecordID   int64
	SessionID      string
	ExerciseType   entity.ExerciseType
	UserInput      string
	ResponseTimeMs int64
	MistakeType    string
}

// SubmitAnswerResult reports the graded attempt and the new schedule.
type SubmitAnswerResult struct {
	IsCorrect     bool
	Accuracy      int32
	PartialCredit bool
	Level         int32
	Status        entity.LearningStatus
	MasteryScore  int32
	IntervalHours int32
	NextReviewAt  time.Time
}

// PracticeUsecase encapsulates the per-attempt practice loop and word-record
// management.
type PracticeUsecase interface {
	CollectWord(ctx context.Context, userID int64, word string, lang entity.Language) (*entity.WordRecord, error)
	SubmitAnswer(ctx context.Context, userID int64, input SubmitAnswerInput) (*SubmitAnswerResult, error)
	GetWordRecord(ctx context.Context, userID, id int64) (*entity.WordRecord, error)
	ListWordRecords(ctx context.Context, query *repository.ListWordRecordQuery) ([]*entity.WordRecord, int64, error)
}

// conflict retry policy for concurrent submissions on the same record.
const (
	maxConflictRetries = 3
	conflictBackoff    = 25 * time.Millisecond
)

// NewPracticeUsecase wires the repositories with default behaviour.
func NewPracticeUsecase(words repository.WordRecordRepository) PracticeUsecase {
	return &practiceUsecase{
		words:       words,
		progression: engine.NewProgression(),
		clock:       time.Now,
	}
}

type practiceUsecase struct {
	words       repository.WordRecordRepository
	progression *engine.Progression
	clock       func() time.Time
}

func (u *practiceUsecase) CollectWord(ctx context.Context, userID int64, word string, lang entity.Language) (*entity.WordRecord, error) {
	text := entity.NormalizeWordToken(word)
	if text == "" {
		return nil, entity.ErrInvalidWordText
	}

	existing, err := u.words.FindByWord(ctx, userID, text)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rec := &entity.WordRecord{
		UserID:   userID,
		Word:     text,
		Language: lang,
		Status:   entity.StatusNotStarted,
	}
	rec.Normalize(u.clock())

	created, err := u.words.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateWordRecord) {
			// Lost a race against a concurrent collect; return the winner.
			return u.words.FindByWord(ctx, userID, text)
		}
		return nil, err
	}
	return created, nil
}

// SubmitAnswer grades one answer and applies the full per-attempt pipeline:
// accuracy scoring, progression transition, and SRS rescheduling. The record
// update and the attempt append commit together; on a version conflict the
// whole step is recomputed from fresh state so concurrent submissions
// serialize instead of double counting.
func (u *practiceUsecase) SubmitAnswer(ctx context.Context, userID int64, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
	if input.WordRecordID <= 0 || !entity.IsValidExerciseType(input.ExerciseType) {
		return nil, entity.ErrInvalidAnswerInput
	}

	var lastErr error
	for try := 0; try < maxConflictRetries; try++ {
		if try > 0 {
			if err := sleepCtx(ctx, time.Duration(try)*conflictBackoff); err != nil {
				return nil, err
			}
		}

		result, err := u.submitOnce(ctx, userID, input)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, entity.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (u *practiceUsecase) submitOnce(ctx context.Context, userID int64, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
	rec, err := u.words.GetByID(ctx, userID, input.WordRecordID)
	if err != nil {
		return nil, err
	}

	graded := scorerFor(input.ExerciseType).Score(input.UserInput, rec.Word)
	now := u.clock()

	u.progression.Apply(rec, engine.AttemptResult{
		IsCorrect:      graded.IsCorrect,
		Accuracy:       graded.Accuracy,
		ResponseTimeMs: input.ResponseTimeMs,
	}, now)
	iv := engine.Schedule(rec, graded.IsCorrect, now)

	attempt := &entity.ExerciseAttempt{
		WordRecordID:   rec.ID,
		SessionID:      input.SessionID,
		ExerciseType:   input.ExerciseType,
		RawInput:       strings.TrimSpace(input.UserInput),
		IsCorrect:      graded.IsCorrect,
		Accuracy:       graded.Accuracy,
		PartialCredit:  graded.PartialCredit,
		ResponseTimeMs: input.ResponseTimeMs,
		MistakeType:    input.MistakeType,
		CreatedAt:      now,
	}

	updated, err := u.words.ApplyAttempt(ctx, rec, attempt)
	if err != nil {
		return nil, err
	}

	return &SubmitAnswerResult{
		IsCorrect:     graded.IsCorrect,
		Accuracy:      graded.Accuracy,
		PartialCredit: graded.PartialCredit,
		Level:         updated.ProgressionLevel,
		Status:        updated.Status,
		MasteryScore:  updated.MasteryScore,
		IntervalHours: iv.Hours,
		NextReviewAt:  iv.NextReviewAt,
	}, nil
}

func (u *practiceUsecase) GetWordRecord(ctx context.Context, userID, id int64) (*entity.WordRecord, error) {
	if id <= 0 {
		return nil, entity.ErrWordRecordNotFound
	}
	return u.words.GetByID(ctx, userID, id)
}

func (u *practiceUsecase) ListWordRecords(ctx context.Context, query *repository.ListWordRecordQuery) ([]*entity.WordRecord, int64, error) {
	return u.words.List(ctx, query)
}

func scorerFor(t entity.ExerciseType) *accuracy.Scorer {
	if entity.IsConstructExercise(t) {
		return accuracy.NewConstructScorer()
	}
	return accuracy.NewScorer()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
