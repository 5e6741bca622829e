package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/eslsoft/wordpace/internal/engine"
	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
)

var reevalNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newReevaluateUsecaseAt(words repository.WordRecordRepository, attempts *fakeAttemptRepo, now time.Time) *reevaluateUsecase {
	return &reevaluateUsecase{
		words:    words,
		attempts: attempts,
		scorer:   engine.NewDifficultyScorer(),
		clock:    func() time.Time { return now },
	}
}

func seedReviewed(t *testing.T, repo *fakeWordRepo, rec *entity.WordRecord) *entity.WordRecord {
	t.Helper()
	rec.Normalize(reevalNow)
	created, err := repo.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("seed reviewed %q: %v", rec.Word, err)
	}
	return created
}

func seedAttempt(t *testing.T, repo *fakeAttemptRepo, wordID int64, correct bool, mistakeType string, at time.Time) {
	t.Helper()
	_, err := repo.Append(context.Background(), &entity.ExerciseAttempt{
		WordRecordID: wordID,
		ExerciseType: entity.ExerciseWriteByDefinition,
		IsCorrect:    correct,
		MistakeType:  mistakeType,
		CreatedAt:    at,
	})
	if err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
}

// seedStrugglingWord builds a record whose history scores well above the
// default threshold: 8/10 mistakes, lopsided daily counts, two mistake
// categories, already flagged difficult.
func seedStrugglingWord(t *testing.T, words *fakeWordRepo, attempts *fakeAttemptRepo, userID int64) *entity.WordRecord {
	t.Helper()
	rec := seedReviewed(t, words, &entity.WordRecord{
		UserID:           userID,
		Word:             "ubiquitous",
		Language:         entity.LanguageEnglish,
		ProgressionLevel: 3,
		Status:           entity.StatusDifficult,
		ReviewCount:      10,
		CorrectCount:     2,
		MistakeCount:     8,
		MasteryScore:     10,
	})
	dayOne := reevalNow.Add(-48 * time.Hour)
	dayTwo := reevalNow.Add(-24 * time.Hour)
	seedAttempt(t, attempts, rec.ID, false, "spelling", dayOne)
	for i := 0; i < 7; i++ {
		seedAttempt(t, attempts, rec.ID, false, "meaning", dayTwo.Add(time.Duration(i)*time.Minute))
	}
	seedAttempt(t, attempts, rec.ID, true, "", dayTwo.Add(time.Hour))
	seedAttempt(t, attempts, rec.ID, true, "", dayTwo.Add(2*time.Hour))
	return rec
}

func TestReevaluateDemotesStrugglingWord(t *testing.T) {
	words := newFakeWordRepo()
	attempts := newFakeAttemptRepo()
	uc := newReevaluateUsecaseAt(words, attempts, reevalNow)
	rec := seedStrugglingWord(t, words, attempts, 7)

	applied, err := uc.Reevaluate(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("expected 1 adjustment, got %d", len(applied))
	}
	adj := applied[0]
	if adj.WordRecordID != rec.ID || adj.Word != "ubiquitous" {
		t.Fatalf("unexpected target: %+v", adj)
	}
	// Mistake rate 80 with erratic daily counts: the severe demotion.
	if adj.OldLevel != 3 || adj.NewLevel != 1 {
		t.Fatalf("expected demotion 3 -> 1, got %d -> %d", adj.OldLevel, adj.NewLevel)
	}
	if adj.DifficultyScore < engine.DefaultDifficultyThreshold {
		t.Fatalf("score %f below threshold", adj.DifficultyScore)
	}
	// Level 1 base of 4h halved by the failure reschedule.
	if adj.NewIntervalHours != 2 {
		t.Fatalf("expected 2h interval, got %d", adj.NewIntervalHours)
	}

	stored, err := words.GetByID(context.Background(), 7, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ProgressionLevel != 1 {
		t.Fatalf("demotion not persisted, level %d", stored.ProgressionLevel)
	}
	if stored.Status != entity.StatusNeedsReview {
		t.Fatalf("demoted word must be flagged for review, got %s", stored.Status)
	}
	if stored.Review.NextReviewAt == nil || !stored.Review.NextReviewAt.Equal(reevalNow.Add(2*time.Hour)) {
		t.Fatalf("unexpected next review: %v", stored.Review.NextReviewAt)
	}
}

func TestReevaluateLeavesHealthyWordAlone(t *testing.T) {
	words := newFakeWordRepo()
	attempts := newFakeAttemptRepo()
	uc := newReevaluateUsecaseAt(words, attempts, reevalNow)
	rec := seedReviewed(t, words, &entity.WordRecord{
		UserID:           7,
		Word:             "cat",
		Language:         entity.LanguageEnglish,
		ProgressionLevel: 4,
		Status:           entity.StatusLearned,
		ReviewCount:      10,
		CorrectCount:     9,
		MistakeCount:     1,
		MasteryScore:     90,
	})
	for i := 0; i < 9; i++ {
		seedAttempt(t, attempts, rec.ID, true, "", reevalNow.Add(-time.Duration(i+1)*time.Hour))
	}
	seedAttempt(t, attempts, rec.ID, false, "spelling", reevalNow.Add(-10*time.Hour))

	applied, err := uc.Reevaluate(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no adjustments, got %+v", applied)
	}
	stored, _ := words.GetByID(context.Background(), 7, rec.ID)
	if stored.ProgressionLevel != 4 || stored.Status != entity.StatusLearned {
		t.Fatalf("healthy word was modified: level %d status %s", stored.ProgressionLevel, stored.Status)
	}
}

func TestReevaluateHonorsCustomThreshold(t *testing.T) {
	words := newFakeWordRepo()
	attempts := newFakeAttemptRepo()
	uc := newReevaluateUsecaseAt(words, attempts, reevalNow)
	seedStrugglingWord(t, words, attempts, 7)

	applied, err := uc.Reevaluate(context.Background(), 7, 99)
	if err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("threshold 99 must suppress adjustment, got %+v", applied)
	}
}

// conflictingWordRepo rejects the first UpdateIfVersion calls with a
// version conflict, as if another writer won the race.
type conflictingWordRepo struct {
	*fakeWordRepo
	rejections int
}

func (r *conflictingWordRepo) UpdateIfVersion(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error) {
	if r.rejections > 0 {
		r.rejections--
		return nil, entity.ErrVersionConflict
	}
	return r.fakeWordRepo.UpdateIfVersion(ctx, rec)
}

func TestReevaluateSkipsConcurrentlyModifiedRecord(t *testing.T) {
	inner := newFakeWordRepo()
	attempts := newFakeAttemptRepo()
	words := &conflictingWordRepo{fakeWordRepo: inner, rejections: 1}
	uc := newReevaluateUsecaseAt(words, attempts, reevalNow)
	rec := seedStrugglingWord(t, inner, attempts, 7)

	applied, err := uc.Reevaluate(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("conflicts are skipped, not failed: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("conflicted record must not report an adjustment, got %+v", applied)
	}

	stored, err := inner.GetByID(context.Background(), 7, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ProgressionLevel != 3 {
		t.Fatalf("skipped record must keep its level, got %d", stored.ProgressionLevel)
	}
}

func TestReevaluateAllCoversEveryActiveUser(t *testing.T) {
	words := newFakeWordRepo()
	attempts := newFakeAttemptRepo()
	uc := newReevaluateUsecaseAt(words, attempts, reevalNow)
	seedStrugglingWord(t, words, attempts, 7)
	seedStrugglingWord(t, words, attempts, 8)
	// User with only uncollected words never shows up.
	seedReviewed(t, words, &entity.WordRecord{
		UserID:   9,
		Word:     "dog",
		Language: entity.LanguageEnglish,
		Status:   entity.StatusNotStarted,
	})

	applied, err := uc.ReevaluateAll(context.Background(), 0)
	if err != nil {
		t.Fatalf("reevaluate all: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected one adjustment per active user, got %d", len(applied))
	}
	users := map[int64]bool{}
	for _, adj := range applied {
		rec, err := words.GetByID(context.Background(), adjUser(adj, words), adj.WordRecordID)
		if err != nil {
			t.Fatalf("reload %d: %v", adj.WordRecordID, err)
		}
		users[rec.UserID] = true
	}
	if !users[7] || !users[8] {
		t.Fatalf("expected users 7 and 8 covered, got %v", users)
	}
}

func adjUser(adj AppliedAdjustment, repo *fakeWordRepo) int64 {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	if rec, ok := repo.items[adj.WordRecordID]; ok {
		return rec.UserID
	}
	return 0
}
