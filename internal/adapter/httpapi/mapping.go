package httpapi

import (
	"time"

	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/usecase"
)

type wordRecordResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Word             string     `json:"word"`
	Language         string     `json:"language"`
	ProgressionLevel int32      `json:"progression_level"`
	ReviewCount      int32      `json:"review_count"`
	CorrectCount     int32      `json:"correct_count"`
	CorrectStreak    int32      `json:"correct_streak"`
	MistakeCount     int32      `json:"mistake_count"`
	MasteryScore     int32      `json:"mastery_score"`
	Status           string     `json:"status"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt     *time.Time `json:"next_review_at,omitempty"`
	IntervalHours    int32      `json:"interval_hours"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toWordRecordResponse(rec *entity.WordRecord) wordRecordResponse {
	return wordRecordResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		Word:             rec.Word,
		Language:         string(rec.Language),
		ProgressionLevel: rec.ProgressionLevel,
		ReviewCount:      rec.ReviewCount,
		CorrectCount:     rec.CorrectCount,
		CorrectStreak:    rec.CorrectStreak,
		MistakeCount:     rec.MistakeCount,
		MasteryScore:     rec.MasteryScore,
		Status:           string(rec.Status),
		LastReviewedAt:   rec.Review.LastReviewedAt,
		NextReviewAt:     rec.Review.NextReviewAt,
		IntervalHours:    rec.Review.IntervalHours,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

type submitAnswerResponse struct {
	IsCorrect     bool      `json:"is_correct"`
	Accuracy      int32     `json:"accuracy"`
	PartialCredit bool      `json:"partial_credit"`
	Level         int32     `json:"level"`
	Status        string    `json:"status"`
	MasteryScore  int32     `json:"mastery_score"`
	IntervalHours int32     `json:"interval_hours"`
	NextReviewAt  time.Time `json:"next_review_at"`
}

func toSubmitAnswerResponse(res *usecase.SubmitAnswerResult) submitAnswerResponse {
	return submitAnswerResponse{
		IsCorrect:     res.IsCorrect,
		Accuracy:      res.Accuracy,
		PartialCredit: res.PartialCredit,
		Level:         res.Level,
		Status:        string(res.Status),
		MasteryScore:  res.MasteryScore,
		IntervalHours: res.IntervalHours,
		NextReviewAt:  res.NextReviewAt,
	}
}

type practiceItemResponse struct {
	WordRecordID int64  `json:"word_record_id"`
	Word         string `json:"word"`
	ExerciseType string `json:"exercise_type"`
}

type sessionResponse struct {
	SessionID string                 `json:"session_id"`
	UserID    int64                  `json:"user_id"`
	Items     []practiceItemResponse `json:"items"`
}

func toSessionResponse(sess *entity.PracticeSession) sessionResponse {
	items := make([]practiceItemResponse, 0, len(sess.Items))
	for _, item := range sess.Items {
		items = append(items, practiceItemResponse{
			WordRecordID: item.WordRecordID,
			Word:         item.Word,
			ExerciseType: string(item.ExerciseType),
		})
	}
	return sessionResponse{
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
		Items:     items,
	}
}

type appliedAdjustmentResponse struct {
	WordRecordID     int64     `json:"word_record_id"`
	Word             string    `json:"word"`
	OldLevel         int32     `json:"old_level"`
	NewLevel         int32     `json:"new_level"`
	DifficultyScore  float64   `json:"difficulty_score"`
	Reason           string    `json:"reason"`
	NewIntervalHours int32     `json:"new_interval_hours"`
	NextReviewAt     time.Time `json:"next_review_at"`
}

type reevaluateResponse struct {
	Adjustments []appliedAdjustmentResponse `json:"adjustments"`
}

func toReevaluateResponse(applied []usecase.AppliedAdjustment) reevaluateResponse {
	out := reevaluateResponse{Adjustments: make([]appliedAdjustmentResponse, 0, len(applied))}
	for _, adj := range applied {
		out.Adjustments = append(out.Adjustments, appliedAdjustmentResponse{
			WordRecordID:     adj.WordRecordID,
			Word:             adj.Word,
			OldLevel:         adj.OldLevel,
			NewLevel:         adj.NewLevel,
			DifficultyScore:  adj.DifficultyScore,
			Reason:           adj.Reason,
			NewIntervalHours: adj.NewIntervalHours,
			NextReviewAt:     adj.NextReviewAt,
		})
	}
	return out
}
