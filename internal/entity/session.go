package entity

// SourcePolicy selects where a practice session draws its words from.
type SourcePolicy string

const (
	SourceSRSDue     SourcePolicy = "srs-due"
	SourceCollection SourcePolicy = "collection"
)

// SessionRequest is the ephemeral input for composing a practice session.
// It is never persisted by the engine.
type SessionRequest struct {
	UserID             int64
	WordsToStudy       int32
	DifficultyOverride int32 // 0 means unset, otherwise 1-5
	EnabledTypes       []ExerciseType
	Source             SourcePolicy
	PrioritizeOverdue  bool
	SkipEasyMode       bool
}

// Normalize repairs invalid preferences in place rather than failing:
// unknown types are discarded and an empty enabled set falls back to the
// easiest exercise.
func (sr *SessionRequest) Normalize() {
	if sr.WordsToStudy <= 0 {
		sr.WordsToStudy = DefaultSessionSize
	}
	if sr.DifficultyOverride < 0 || sr.DifficultyOverride > MaxProgressionLevel {
		sr.DifficultyOverride = 0
	}
	if sr.Source == "" {
		sr.Source = SourceSRSDue
	}

	valid := sr.EnabledTypes[:0]
	for _, t := range sr.EnabledTypes {
		if IsValidExerciseType(t) {
			valid = append(valid, t)
		}
	}
	sr.EnabledTypes = valid
	if len(sr.EnabledTypes) == 0 {
		sr.EnabledTypes = []ExerciseType{ExerciseRememberTranslation}
	}
}

// DefaultSessionSize bounds a session when the caller does not ask for one.
const DefaultSessionSize int32 = 10

// PracticeItem is one scheduled entry of a composed session.
type PracticeItem struct {
	WordRecordID int64
	Word         string
	ExerciseType ExerciseType
}

// PracticeSession is the ordered outcome of session composition.
type PracticeSession struct {
	SessionID string
	UserID    int64
	Items     []PracticeItem
}
