package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
)

type fakeWordRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.WordRecord

	// conflictsLeft forces that many version conflicts on ApplyAttempt
	// before letting writes through, to exercise the retry path.
	conflictsLeft int
	attempts      []*entity.ExerciseAttempt
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{items: make(map[int64]*entity.WordRecord)}
}

func cloneRecord(rec *entity.WordRecord) *entity.WordRecord {
	copy := *rec
	if rec.Review.LastReviewedAt != nil {
		t := *rec.Review.LastReviewedAt
		copy.Review.LastReviewedAt = &t
	}
	if rec.Review.NextReviewAt != nil {
		t := *rec.Review.NextReviewAt
		copy.Review.NextReviewAt = &t
	}
	if rec.LastAnswerOK != nil {
		b := *rec.LastAnswerOK
		copy.LastAnswerOK = &b
	}
	return &copy
}

func (r *fakeWordRepo) Create(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == rec.UserID && item.Word == rec.Word {
			return nil, entity.ErrDuplicateWordRecord
		}
	}
	r.seq++
	copy := cloneRecord(rec)
	copy.ID = r.seq
	copy.Version = 1
	r.items[copy.ID] = copy
	return cloneRecord(copy), nil
}

func (r *fakeWordRepo) GetByID(ctx context.Context, userID, id int64) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, entity.ErrWordRecordNotFound
	}
	return cloneRecord(item), nil
}

func (r *fakeWordRepo) FindByWord(ctx context.Context, userID int64, word string) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.Word == word {
			return cloneRecord(item), nil
		}
	}
	return nil, nil
}

func (r *fakeWordRepo) UpdateIfVersion(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(rec)
}

func (r *fakeWordRepo) updateLocked(rec *entity.WordRecord) (*entity.WordRecord, error) {
	existing, ok := r.items[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return nil, entity.ErrWordRecordNotFound
	}
	if existing.Version != rec.Version {
		return nil, entity.ErrVersionConflict
	}
	copy := cloneRecord(rec)
	copy.Version++
	r.items[copy.ID] = copy
	return cloneRecord(copy), nil
}

func (r *fakeWordRepo) ApplyAttempt(ctx context.Context, rec *entity.WordRecord, attempt *entity.ExerciseAttempt) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		// Simulate a concurrent writer bumping the stored version.
		if existing, ok := r.items[rec.ID]; ok {
			existing.Version++
		}
		return nil, entity.ErrVersionConflict
	}
	updated, err := r.updateLocked(rec)
	if err != nil {
		return nil, err
	}
	stored := *attempt
	stored.ID = int64(len(r.attempts) + 1)
	r.attempts = append(r.attempts, &stored)
	return updated, nil
}

func (r *fakeWordRepo) ListDue(ctx context.Context, userID int64, before time.Time, limit int32) ([]*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var due []*entity.WordRecord
	for _, item := range r.items {
		if item.UserID != userID || item.Review.NextReviewAt == nil {
			continue
		}
		if item.Review.NextReviewAt.After(before) {
			continue
		}
		due = append(due, cloneRecord(item))
	}
	sortByNextReview(due)
	return capSlice(due, limit), nil
}

func (r *fakeWordRepo) ListDueBetween(ctx context.Context, userID int64, from, to time.Time, limit int32) ([]*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var soon []*entity.WordRecord
	for _, item := range r.items {
		if item.UserID != userID || item.Review.NextReviewAt == nil {
			continue
		}
		at := *item.Review.NextReviewAt
		if !at.After(from) || at.After(to) {
			continue
		}
		soon = append(soon, cloneRecord(item))
	}
	sortByNextReview(soon)
	return capSlice(soon, limit), nil
}

func (r *fakeWordRepo) ListNew(ctx context.Context, userID int64, limit int32) ([]*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var fresh []*entity.WordRecord
	for _, item := range r.items {
		if item.UserID != userID || item.ReviewCount != 0 {
			continue
		}
		fresh = append(fresh, cloneRecord(item))
	}
	sort.Slice(fresh, func(i, j int) bool {
		if fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].ID < fresh[j].ID
		}
		return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
	})
	return capSlice(fresh, limit), nil
}

func (r *fakeWordRepo) List(ctx context.Context, query *repository.ListWordRecordQuery) ([]*entity.WordRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WordRecord
	for _, item := range r.items {
		if item.UserID == query.UserID {
			out = append(out, cloneRecord(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeWordRepo) ListReviewed(ctx context.Context, userID int64) ([]*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WordRecord
	for _, item := range r.items {
		if item.UserID == userID && item.ReviewCount > 0 {
			out = append(out, cloneRecord(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeWordRepo) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int64]struct{})
	var ids []int64
	for _, item := range r.items {
		if item.ReviewCount == 0 {
			continue
		}
		if _, ok := seen[item.UserID]; ok {
			continue
		}
		seen[item.UserID] = struct{}{}
		ids = append(ids, item.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func sortByNextReview(recs []*entity.WordRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := *recs[i].Review.NextReviewAt, *recs[j].Review.NextReviewAt
		if a.Equal(b) {
			return recs[i].ID < recs[j].ID
		}
		return a.Before(b)
	})
}

func capSlice(recs []*entity.WordRecord, limit int32) []*entity.WordRecord {
	if limit >= 0 && int32(len(recs)) > limit {
		return recs[:limit]
	}
	return recs
}

type fakeAttemptRepo struct {
	mu    sync.RWMutex
	seq   int64
	items []*entity.ExerciseAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{}
}

func (r *fakeAttemptRepo) Append(ctx context.Context, attempt *entity.ExerciseAttempt) (*entity.ExerciseAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *attempt
	copy.ID = r.seq
	r.items = append(r.items, &copy)
	out := copy
	return &out, nil
}

func (r *fakeAttemptRepo) ListRecent(ctx context.Context, wordRecordID int64, limit int32) ([]*entity.ExerciseAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ExerciseAttempt
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].WordRecordID != wordRecordID {
			continue
		}
		copy := *r.items[i]
		out = append(out, &copy)
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) DailyMistakeCounts(ctx context.Context, wordRecordID int64, since time.Time) ([]entity.DailyMistakeCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[time.Time]int32)
	for _, a := range r.items {
		if a.WordRecordID != wordRecordID || a.IsCorrect || a.CreatedAt.Before(since) {
			continue
		}
		day := a.CreatedAt.Truncate(24 * time.Hour)
		counts[day]++
	}
	out := make([]entity.DailyMistakeCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, entity.DailyMistakeCount{Day: day, Mistakes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *fakeAttemptRepo) DistinctMistakeTypes(ctx context.Context, wordRecordID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, a := range r.items {
		if a.WordRecordID != wordRecordID || a.MistakeType == "" {
			continue
		}
		if _, ok := seen[a.MistakeType]; ok {
			continue
		}
		seen[a.MistakeType] = struct{}{}
		out = append(out, a.MistakeType)
	}
	sort.Strings(out)
	return out, nil
}
