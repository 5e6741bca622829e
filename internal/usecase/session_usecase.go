package usecase

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/wordpace/internal/engine"
	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
)

// dueSoonWindow is how far ahead the composer looks for upcoming reviews.
const dueSoonWindow = 24 * time.Hour

// fillShare caps the overdue group (when not prioritized) and the due-soon
// group at 70% of their available budget, leaving room for new words.
const fillShare = 0.7

// SessionUsecase composes bounded practice sessions.
type SessionUsecase interface {
	CreateSession(ctx context.Context, req *entity.SessionRequest) (*entity.PracticeSession, error)
}

// NewSessionUsecase wires the repository with default behaviour.
// defaultSize overrides entity.DefaultSessionSize when positive.
func NewSessionUsecase(words repository.WordRecordRepository, defaultSize int32) SessionUsecase {
	return &sessionUsecase{
		words:       words,
		defaultSize: defaultSize,
		clock:       time.Now,
	}
}

type sessionUsecase struct {
	words       repository.WordRecordRepository
	defaultSize int32
	clock       func() time.Time
}

// CreateSession builds the ordered word list: overdue reviews first, then
// reviews due within the next day, then brand-new words, within the target
// size. An empty candidate pool yields an empty session, not an error.
func (u *sessionUsecase) CreateSession(ctx context.Context, req *entity.SessionRequest) (*entity.PracticeSession, error) {
	if req == nil || req.UserID <= 0 {
		return nil, entity.ErrInvalidSessionRequest
	}
	if req.WordsToStudy <= 0 && u.defaultSize > 0 {
		req.WordsToStudy = u.defaultSize
	}
	req.Normalize()

	now := u.clock()
	target := req.WordsToStudy

	overdueCap := target
	if !req.PrioritizeOverdue {
		overdueCap = share(target, fillShare)
	}
	overdue, err := u.words.ListDue(ctx, req.UserID, now, overdueCap)
	if err != nil {
		return nil, err
	}

	picked := overdue
	if remaining := target - int32(len(picked)); remaining > 0 {
		dueSoon, err := u.words.ListDueBetween(ctx, req.UserID, now, now.Add(dueSoonWindow), share(remaining, fillShare))
		if err != nil {
			return nil, err
		}
		picked = append(picked, dueSoon...)
	}
	if remaining := target - int32(len(picked)); remaining > 0 {
		fresh, err := u.words.ListNew(ctx, req.UserID, remaining)
		if err != nil {
			return nil, err
		}
		picked = append(picked, fresh...)
	}

	// Guard against a record surfacing in two groups; keep first placement.
	picked = lo.UniqBy(picked, func(rec *entity.WordRecord) int64 { return rec.ID })
	if int32(len(picked)) > target {
		picked = picked[:target]
	}

	items := lo.Map(picked, func(rec *entity.WordRecord, _ int) entity.PracticeItem {
		return entity.PracticeItem{
			WordRecordID: rec.ID,
			Word:         rec.Word,
			ExerciseType: engine.SelectExercise(rec, req),
		}
	})

	return &entity.PracticeSession{
		SessionID: uuid.NewString(),
		UserID:    req.UserID,
		Items:     items,
	}, nil
}

func share(n int32, f float64) int32 {
	return int32(math.Floor(float64(n) * f))
}
