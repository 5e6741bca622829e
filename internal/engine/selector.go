package engine

import (
	"github.com/samber/lo"

	"github.com/eslsoft/wordpace/internal/entity"
)

// forcedOrder maps a forced difficulty (1-5) to the acceptable exercise
// types in preference order; the first enabled entry wins.
var forcedOrder = map[int32][]entity.ExerciseType{
	1: {entity.ExerciseRememberTranslation, entity.ExerciseChooseRightWord, entity.ExerciseMakeUpWord, entity.ExerciseWriteByDefinition, entity.ExerciseWriteBySound},
	2: {entity.ExerciseChooseRightWord, entity.ExerciseMakeUpWord, entity.ExerciseRememberTranslation, entity.ExerciseWriteByDefinition, entity.ExerciseWriteBySound},
	3: {entity.ExerciseMakeUpWord, entity.ExerciseChooseRightWord, entity.ExerciseWriteByDefinition, entity.ExerciseWriteBySound, entity.ExerciseRememberTranslation},
	4: {entity.ExerciseWriteByDefinition, entity.ExerciseWriteBySound, entity.ExerciseMakeUpWord, entity.ExerciseChooseRightWord, entity.ExerciseRememberTranslation},
	5: {entity.ExerciseWriteBySound, entity.ExerciseWriteByDefinition, entity.ExerciseMakeUpWord, entity.ExerciseChooseRightWord, entity.ExerciseRememberTranslation},
}

// SelectExercise resolves the exercise type for one word under the session
// preferences. It is total: an unsatisfiable preference set degrades to
// remember-translation instead of failing.
func SelectExercise(rec *entity.WordRecord, req *entity.SessionRequest) entity.ExerciseType {
	enabled := req.EnabledTypes
	if len(enabled) == 0 {
		return entity.ExerciseRememberTranslation
	}

	selected := entity.ExerciseForLevel(rec.ProgressionLevel)

	if req.DifficultyOverride > 0 {
		if forced, ok := pickForced(req.DifficultyOverride, enabled); ok {
			selected = forced
		}
	}

	if req.SkipEasyMode && selected == entity.ExerciseRememberTranslation {
		if harder, ok := nextHarder(enabled); ok {
			selected = harder
		}
	}

	if !lo.Contains(enabled, selected) {
		selected = closestEnabled(rec.ProgressionLevel, enabled)
	}

	return selected
}

func pickForced(difficulty int32, enabled []entity.ExerciseType) (entity.ExerciseType, bool) {
	order, ok := forcedOrder[difficulty]
	if !ok {
		return "", false
	}
	for _, t := range order {
		if lo.Contains(enabled, t) {
			return t, true
		}
	}
	return "", false
}

// nextHarder walks the catalog past remember-translation and returns the
// first enabled type.
func nextHarder(enabled []entity.ExerciseType) (entity.ExerciseType, bool) {
	for _, spec := range entity.ExerciseCatalog() {
		if spec.Type == entity.ExerciseRememberTranslation {
			continue
		}
		if lo.Contains(enabled, spec.Type) {
			return spec.Type, true
		}
	}
	return "", false
}

// closestEnabled picks the enabled type whose canonical level is nearest the
// word's level, breaking ties toward the lower level.
func closestEnabled(level int32, enabled []entity.ExerciseType) entity.ExerciseType {
	best := entity.ExerciseRememberTranslation
	bestDist := int32(-1)
	bestLevel := int32(-1)

	for _, spec := range entity.ExerciseCatalog() {
		if !lo.Contains(enabled, spec.Type) {
			continue
		}
		dist := spec.Level - level
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && spec.Level < bestLevel) {
			best = spec.Type
			bestDist = dist
			bestLevel = spec.Level
		}
	}

	return best
}
