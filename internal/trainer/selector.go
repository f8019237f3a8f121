package trainer

import (
	"strings"

	"ironlog/internal/exercise"
)

const (
	// warmUpCount is how many exercises are accepted unconditionally
	// before the diversity rule kicks in.
	warmUpCount = 3
	// maxWorkoutExercises caps a single workout.
	maxWorkoutExercises = 6
)

// selectDiverse greedily picks exercises in input order. The first three
// candidates are accepted unconditionally; afterwards a candidate must
// contribute at least one muscle group not yet covered. Selection stops at
// maxExercises.
func selectDiverse(candidates []exercise.Exercise, maxExercises int) []exercise.Exercise {
	if maxExercises <= 0 {
		return nil
	}

	covered := make(map[string]struct{})
	var selected []exercise.Exercise
	for _, candidate := range candidates {
		if len(selected) >= maxExercises {
			break
		}
		if len(selected) >= warmUpCount && !contributesNewMuscle(candidate, covered) {
			continue
		}
		selected = append(selected, candidate)
		for _, muscle := range candidate.MuscleGroups {
			covered[strings.ToLower(muscle)] = struct{}{}
		}
	}
	return selected
}

// selectForProgram picks the exercises the rule-based builder prescribes.
// Daily programs go through the diversity selector; multi-week templates
// repeat a fixed slice from the top of the candidate pool instead, so the
// same exercises recur on every training day.
func selectForProgram(programType ProgramType, candidates []exercise.Exercise) []exercise.Exercise {
	if programType == TypeMultiWeek {
		if len(candidates) > maxWorkoutExercises {
			return candidates[:maxWorkoutExercises]
		}
		return candidates
	}
	return selectDiverse(candidates, maxWorkoutExercises)
}

func contributesNewMuscle(candidate exercise.Exercise, covered map[string]struct{}) bool {
	for _, muscle := range candidate.MuscleGroups {
		if _, ok := covered[strings.ToLower(muscle)]; !ok {
			return true
		}
	}
	return false
}
