package entity

import "time"

// ExerciseAttempt is an immutable event recorded once per submitted answer.
type ExerciseAttempt struct {
	ID             int64
	WordRecordID   int64
	SessionID      string
	ExerciseType   ExerciseType
	RawInput       string
	IsCorrect      bool
	Accuracy       int32
	PartialCredit  bool
	ResponseTimeMs int64
	MistakeType    string
	CreatedAt      time.Time
}

// DailyMistakeCount is a per-day mistake tally for one word record, derived
// from the attempt log for batch difficulty scoring.
type DailyMistakeCount struct {
	Day      time.Time
	Mistakes int32
}
