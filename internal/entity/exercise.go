package entity

// ExerciseType identifies one of the closed set of practice exercise kinds.
type ExerciseType string

const (
	ExerciseRememberTranslation ExerciseType = "remember-translation"
	ExerciseChooseRightWord     ExerciseType = "choose-right-word"
	ExerciseMakeUpWord          ExerciseType = "make-up-word"
	ExerciseWriteByDefinition   ExerciseType = "write-by-definition"
	ExerciseWriteBySound        ExerciseType = "write-by-sound"
)

// ExerciseSpec carries the fixed attributes of an exercise type. The flags
// describe the UI contract only; scheduling decisions use Level alone.
type ExerciseSpec struct {
	Type          ExerciseType
	Level         int32
	MaxAttempts   int32
	RequiresAudio bool
	RequiresInput bool
}

// exerciseCatalog lists every exercise type in canonical level order.
var exerciseCatalog = []ExerciseSpec{
	{Type: ExerciseRememberTranslation, Level: 1, MaxAttempts: 1, RequiresInput: false},
	{Type: ExerciseChooseRightWord, Level: 2, MaxAttempts: 2, RequiresInput: false},
	{Type: ExerciseMakeUpWord, Level: 3, MaxAttempts: 3, RequiresInput: true},
	{Type: ExerciseWriteByDefinition, Level: 4, MaxAttempts: 3, RequiresInput: true},
	{Type: ExerciseWriteBySound, Level: 4, MaxAttempts: 3, RequiresAudio: true, RequiresInput: true},
}

// ExerciseCatalog returns the closed set of exercise specs in level order.
func ExerciseCatalog() []ExerciseSpec {
	out := make([]ExerciseSpec, len(exerciseCatalog))
	copy(out, exerciseCatalog)
	return out
}

// SpecFor looks up the spec for a type, reporting whether the type is known.
func SpecFor(t ExerciseType) (ExerciseSpec, bool) {
	for _, spec := range exerciseCatalog {
		if spec.Type == t {
			return spec, true
		}
	}
	return ExerciseSpec{}, false
}

// IsValidExerciseType reports whether t belongs to the closed enumeration.
func IsValidExerciseType(t ExerciseType) bool {
	_, ok := SpecFor(t)
	return ok
}

// ExerciseForLevel maps a progression level to its canonical exercise type.
// Levels 0 and 1 both map to remember-translation; levels above the catalog
// clamp to the hardest written exercise.
func ExerciseForLevel(level int32) ExerciseType {
	switch {
	case level <= 1:
		return ExerciseRememberTranslation
	case level == 2:
		return ExerciseChooseRightWord
	case level == 3:
		return ExerciseMakeUpWord
	case level == 4:
		return ExerciseWriteByDefinition
	default:
		return ExerciseWriteBySound
	}
}

// IsConstructExercise reports whether the type uses drag/construct style
// input, which grades partial credit more leniently.
func IsConstructExercise(t ExerciseType) bool {
	return t == ExerciseMakeUpWord
}
