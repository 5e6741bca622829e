package entity

import "time"

// LearningStatus tracks where a word sits in the user's learning lifecycle.
type LearningStatus string

const (
	StatusNotStarted  LearningStatus = "not_started"
	StatusInProgress  LearningStatus = "in_progress"
	StatusNeedsReview LearningStatus = "needs_review"
	StatusDifficult   LearningStatus = "difficult"
	StatusLearned     LearningStatus = "learned"
)

const (
	// MinProgressionLevel and MaxProgressionLevel bound the exercise tier.
	MinProgressionLevel int32 = 0
	MaxProgressionLevel int32 = 5

	// MinIntervalHours is the floor for any SRS interval.
	MinIntervalHours int32 = 1
)

// ReviewTiming represents spaced repetition metadata for a word record.
type ReviewTiming struct {
	LastReviewedAt *time.Time
	NextReviewAt   *time.Time
	IntervalHours  int32
}

// WordRecord is the per user x word scheduling state. It is mutated only by
// the practice engine: the progression step per attempt and the difficulty
// scorer in batch.
type WordRecord struct {
	ID     int64
	UserID int64
	Word   string
	Language

	ProgressionLevel int32
	ReviewCount      int32
	CorrectCount     int32
	CorrectStreak    int32
	MistakeCount     int32
	SkipCount        int32
	MasteryScore     int32
	Status           LearningStatus
	Review           ReviewTiming
	LastAnswerOK     *bool
	AvgResponseMs    int64

	// Version backs optimistic concurrency on conditional updates.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SuccessRate returns correct/attempts, or 0 when no attempts exist.
func (r *WordRecord) SuccessRate() float64 {
	if r.ReviewCount <= 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.ReviewCount)
}

// IsNew reports whether the word has never been practiced.
func (r *WordRecord) IsNew() bool {
	return r.ReviewCount == 0
}

// DueBy reports whether the record is due for review at the given instant.
func (r *WordRecord) DueBy(now time.Time) bool {
	if r.Review.NextReviewAt == nil {
		return false
	}
	return !r.Review.NextReviewAt.After(now)
}

// Normalize ensures defaults & constraints before persistence.
func (r *WordRecord) Normalize(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.Word = NormalizeWordToken(r.Word)
	r.Language = NormalizeLanguage(r.Language)
	if r.Status == "" {
		r.Status = StatusNotStarted
	}
	if r.ProgressionLevel < MinProgressionLevel {
		r.ProgressionLevel = MinProgressionLevel
	}
	if r.ProgressionLevel > MaxProgressionLevel {
		r.ProgressionLevel = MaxProgressionLevel
	}
	if r.Review.IntervalHours < MinIntervalHours {
		r.Review.IntervalHours = MinIntervalHours
	}
	if r.MasteryScore < 0 {
		r.MasteryScore = 0
	}
	if r.MasteryScore > 100 {
		r.MasteryScore = 100
	}
	if r.LastAnswerOK != nil && !*r.LastAnswerOK {
		r.CorrectStreak = 0
	}
}
