package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
)

var sessionNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newSessionUsecaseAt(repo *fakeWordRepo, now time.Time) *sessionUsecase {
	return &sessionUsecase{words: repo, clock: func() time.Time { return now }}
}

func seedScheduled(t *testing.T, repo *fakeWordRepo, userID int64, word string, level int32, nextReview time.Time) *entity.WordRecord {
	t.Helper()
	rec := &entity.WordRecord{
		UserID:           userID,
		Word:             word,
		Language:         entity.LanguageEnglish,
		ProgressionLevel: level,
		Status:           entity.StatusInProgress,
		ReviewCount:      1,
	}
	rec.Normalize(nextReview)
	rec.Review.NextReviewAt = &nextReview
	created, err := repo.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("seed scheduled %q: %v", word, err)
	}
	return created
}

func seedNew(t *testing.T, repo *fakeWordRepo, userID int64, word string) *entity.WordRecord {
	t.Helper()
	rec := &entity.WordRecord{
		UserID:   userID,
		Word:     word,
		Language: entity.LanguageEnglish,
		Status:   entity.StatusNotStarted,
	}
	rec.Normalize(sessionNow)
	created, err := repo.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("seed new %q: %v", word, err)
	}
	return created
}

func TestCreateSessionOrdersOverdueDueSoonNew(t *testing.T) {
	repo := newFakeWordRepo()
	uc := newSessionUsecaseAt(repo, sessionNow)

	overdue := seedScheduled(t, repo, 7, "alpha", 2, sessionNow.Add(-3*time.Hour))
	dueSoon := seedScheduled(t, repo, 7, "bravo", 2, sessionNow.Add(6*time.Hour))
	fresh := seedNew(t, repo, 7, "charlie")
	// Scheduled well outside the 24h lookahead; must not appear.
	seedScheduled(t, repo, 7, "delta", 2, sessionNow.Add(72*time.Hour))

	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{UserID: 7, WordsToStudy: 10})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if len(sess.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sess.Items))
	}
	wantOrder := []int64{overdue.ID, dueSoon.ID, fresh.ID}
	for i, id := range wantOrder {
		if sess.Items[i].WordRecordID != id {
			t.Fatalf("item %d: expected record %d, got %d", i, id, sess.Items[i].WordRecordID)
		}
	}
}

func TestCreateSessionRespectsTargetSize(t *testing.T) {
	repo := newFakeWordRepo()
	uc := newSessionUsecaseAt(repo, sessionNow)
	for i := 0; i < 8; i++ {
		seedScheduled(t, repo, 7, "over"+string(rune('a'+i)), 1, sessionNow.Add(-time.Duration(i+1)*time.Hour))
	}
	for i := 0; i < 8; i++ {
		seedNew(t, repo, 7, "new"+string(rune('a'+i)))
	}

	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{
		UserID:            7,
		WordsToStudy:      5,
		PrioritizeOverdue: true,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Items) != 5 {
		t.Fatalf("expected exactly 5 items, got %d", len(sess.Items))
	}
	// With overdue prioritized the whole budget goes to overdue reviews.
	seen := make(map[int64]struct{})
	for _, item := range sess.Items {
		if _, dup := seen[item.WordRecordID]; dup {
			t.Fatalf("duplicate record %d in session", item.WordRecordID)
		}
		seen[item.WordRecordID] = struct{}{}
	}
}

func TestCreateSessionCapsOverdueWithoutPriority(t *testing.T) {
	repo := newFakeWordRepo()
	uc := newSessionUsecaseAt(repo, sessionNow)
	for i := 0; i < 12; i++ {
		seedScheduled(t, repo, 7, "over"+string(rune('a'+i)), 1, sessionNow.Add(-time.Duration(i+1)*time.Hour))
	}
	for i := 0; i < 5; i++ {
		seedNew(t, repo, 7, "new"+string(rune('a'+i)))
	}

	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{
		UserID:       7,
		WordsToStudy: 10,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(sess.Items))
	}
	// 70% of 10 leaves at most 7 overdue slots; the rest is new words.
	overdueCount := 0
	for _, item := range sess.Items {
		rec, err := repo.GetByID(context.Background(), 7, item.WordRecordID)
		if err != nil {
			t.Fatalf("lookup %d: %v", item.WordRecordID, err)
		}
		if rec.ReviewCount > 0 {
			overdueCount++
		}
	}
	if overdueCount != 7 {
		t.Fatalf("expected 7 overdue slots, got %d", overdueCount)
	}
}

func TestCreateSessionEmptyPool(t *testing.T) {
	uc := newSessionUsecaseAt(newFakeWordRepo(), sessionNow)
	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{UserID: 7})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Items) != 0 {
		t.Fatalf("expected empty session, got %d items", len(sess.Items))
	}
}

func TestCreateSessionDefaultsSize(t *testing.T) {
	repo := newFakeWordRepo()
	uc := newSessionUsecaseAt(repo, sessionNow)
	for i := 0; i < 20; i++ {
		seedScheduled(t, repo, 7, "word"+string(rune('a'+i)), 1, sessionNow.Add(-time.Hour))
	}

	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{
		UserID:            7,
		PrioritizeOverdue: true,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if int32(len(sess.Items)) != entity.DefaultSessionSize {
		t.Fatalf("expected default size %d, got %d", entity.DefaultSessionSize, len(sess.Items))
	}
}

func TestCreateSessionAssignsEnabledExercises(t *testing.T) {
	repo := newFakeWordRepo()
	uc := newSessionUsecaseAt(repo, sessionNow)
	seedScheduled(t, repo, 7, "alpha", 2, sessionNow.Add(-time.Hour))

	sess, err := uc.CreateSession(context.Background(), &entity.SessionRequest{
		UserID:       7,
		EnabledTypes: []entity.ExerciseType{entity.ExerciseChooseRightWord, "bogus-type"},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sess.Items))
	}
	if got := sess.Items[0].ExerciseType; got != entity.ExerciseChooseRightWord {
		t.Fatalf("expected the only enabled type, got %s", got)
	}
}

func TestCreateSessionRejectsMissingUser(t *testing.T) {
	uc := newSessionUsecaseAt(newFakeWordRepo(), sessionNow)
	if _, err := uc.CreateSession(context.Background(), &entity.SessionRequest{}); err != entity.ErrInvalidSessionRequest {
		t.Fatalf("expected ErrInvalidSessionRequest, got %v", err)
	}
	if _, err := uc.CreateSession(context.Background(), nil); err != entity.ErrInvalidSessionRequest {
		t.Fatalf("expected ErrInvalidSessionRequest for nil request, got %v", err)
	}
}
