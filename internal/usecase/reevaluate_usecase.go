package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/eslsoft/wordpace/internal/engine"
	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
)

const (
	// mistakeHistoryWindow bounds the daily-mistake lookback for the
	// consistency metric.
	mistakeHistoryWindow = 30 * 24 * time.Hour
	// recentAttemptLimit matches the difficulty scorer's recency window.
	recentAttemptLimit = 10
)

// AppliedAdjustment reports one schedule correction made by the batch job.
type AppliedAdjustment struct {
	WordRecordID     int64
	Word             string
	OldLevel         int32
	NewLevel         int32
	DifficultyScore  float64
	Reason           string
	NewIntervalHours int32
	NextReviewAt     time.Time
}

// ReevaluateUsecase runs the periodic difficulty pass that corrects
// schedules outside the per-attempt loop.
type ReevaluateUsecase interface {
	Reevaluate(ctx context.Context, userID int64, threshold float64) ([]AppliedAdjustment, error)
	ReevaluateAll(ctx context.Context, threshold float64) ([]AppliedAdjustment, error)
}

// NewReevaluateUsecase wires the repositories with default behaviour.
func NewReevaluateUsecase(words repository.WordRecordRepository, attempts repository.AttemptRepository) ReevaluateUsecase {
	return &reevaluateUsecase{
		words:    words,
		attempts: attempts,
		scorer:   engine.NewDifficultyScorer(),
		clock:    time.Now,
	}
}

type reevaluateUsecase struct {
	words    repository.WordRecordRepository
	attempts repository.AttemptRepository
	scorer   *engine.DifficultyScorer
	clock    func() time.Time
}

// Reevaluate scores every reviewed word of one user and demotes or
// reschedules those above the threshold. A record that changed under us
// since the read is skipped; the next batch pass picks it up.
func (u *reevaluateUsecase) Reevaluate(ctx context.Context, userID int64, threshold float64) ([]AppliedAdjustment, error) {
	recs, err := u.words.ListReviewed(ctx, userID)
	if err != nil {
		return nil, err
	}

	applied := make([]AppliedAdjustment, 0)
	for _, rec := range recs {
		stats, err := u.gatherStats(ctx, rec)
		if err != nil {
			return applied, err
		}

		adj, ok := u.scorer.PlanAdjustment(rec, stats, threshold)
		if !ok {
			continue
		}

		now := u.clock()
		oldLevel := rec.ProgressionLevel
		rec.ProgressionLevel = clampLevel(oldLevel + adj.LevelDelta)
		if rec.ProgressionLevel < oldLevel {
			rec.Status = entity.StatusNeedsReview
		}
		iv := engine.Schedule(rec, false, now)
		rec.UpdatedAt = now

		if _, err := u.words.UpdateIfVersion(ctx, rec); err != nil {
			if errors.Is(err, entity.ErrVersionConflict) {
				continue
			}
			return applied, err
		}

		applied = append(applied, AppliedAdjustment{
			WordRecordID:     rec.ID,
			Word:             rec.Word,
			OldLevel:         oldLevel,
			NewLevel:         rec.ProgressionLevel,
			DifficultyScore:  adj.Score,
			Reason:           adj.Reason,
			NewIntervalHours: iv.Hours,
			NextReviewAt:     iv.NextReviewAt,
		})
	}
	return applied, nil
}

// reevaluateConcurrency bounds the per-user fan-out of the batch pass.
const reevaluateConcurrency = 4

// ReevaluateAll runs the pass for every user with reviewed records,
// processing users concurrently.
func (u *reevaluateUsecase) ReevaluateAll(ctx context.Context, threshold float64) ([]AppliedAdjustment, error) {
	userIDs, err := u.words.ActiveUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		all []AppliedAdjustment
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reevaluateConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			applied, err := u.Reevaluate(ctx, userID, threshold)
			mu.Lock()
			all = append(all, applied...)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return all, err
	}
	return all, nil
}

func (u *reevaluateUsecase) gatherStats(ctx context.Context, rec *entity.WordRecord) (engine.WordStats, error) {
	recent, err := u.attempts.ListRecent(ctx, rec.ID, recentAttemptLimit)
	if err != nil {
		return engine.WordStats{}, err
	}
	daily, err := u.attempts.DailyMistakeCounts(ctx, rec.ID, u.clock().Add(-mistakeHistoryWindow))
	if err != nil {
		return engine.WordStats{}, err
	}
	types, err := u.attempts.DistinctMistakeTypes(ctx, rec.ID)
	if err != nil {
		return engine.WordStats{}, err
	}

	return engine.WordStats{
		Attempts: rec.ReviewCount,
		Mistakes: rec.MistakeCount,
		RecentResults: lo.Map(recent, func(a *entity.ExerciseAttempt, _ int) bool {
			return a.IsCorrect
		}),
		DailyMistakes: lo.Map(daily, func(d entity.DailyMistakeCount, _ int) int32 {
			return d.Mistakes
		}),
		MistakeTypes: types,
	}, nil
}

func clampLevel(level int32) int32 {
	if level < entity.MinProgressionLevel {
		return entity.MinProgressionLevel
	}
	if level > entity.MaxProgressionLevel {
		return entity.MaxProgressionLevel
	}
	return level
}
