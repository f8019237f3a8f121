package trainer

import (
	"strings"

	"ironlog/internal/exercise"
)

// filterCriteria narrows the catalog down to exercises a user can and
// should do right now.
type filterCriteria struct {
	// difficulty must match the exercise tier exactly.
	difficulty exercise.Difficulty
	// availableEquipment is the union of profile, gym, and request
	// equipment. Owning any one piece an exercise uses qualifies it, and
	// exercises needing nothing are always eligible. An empty list
	// disables equipment filtering entirely.
	availableEquipment []string
	// targetMuscles requires at least one overlapping muscle group when
	// non-empty.
	targetMuscles []string
	// exclude removes recently performed exercises.
	exclude map[int64]struct{}
}

// filterExercises applies the criteria in order: dedupe by ID, difficulty
// tier, equipment availability, target muscles, recency exclusion. Input
// order is preserved.
func filterExercises(catalog []exercise.Exercise, criteria filterCriteria) []exercise.Exercise {
	available := toLowerSet(criteria.availableEquipment)
	targets := toLowerSet(criteria.targetMuscles)

	seen := make(map[int64]struct{}, len(catalog))
	var filtered []exercise.Exercise
	for _, ex := range catalog {
		if _, dup := seen[ex.ID]; dup {
			continue
		}
		seen[ex.ID] = struct{}{}

		if ex.Difficulty != criteria.difficulty {
			continue
		}
		if !equipmentMatches(ex.Equipment, available) {
			continue
		}
		if len(targets) > 0 && !anyMuscleOverlap(ex.MuscleGroups, targets) {
			continue
		}
		if criteria.exclude != nil {
			if _, excluded := criteria.exclude[ex.ID]; excluded {
				continue
			}
		}
		filtered = append(filtered, ex)
	}
	return filtered
}

// equipmentMatches reports whether the exercise can be done with the given
// equipment. The check is a union across the available pieces: using any one
// of them is enough. Bodyweight exercises always qualify, and an empty
// available set means no equipment constraint was requested at all.
func equipmentMatches(required []string, available map[string]struct{}) bool {
	if len(available) == 0 || len(required) == 0 {
		return true
	}
	for _, equipment := range required {
		if _, ok := available[strings.ToLower(equipment)]; ok {
			return true
		}
	}
	return false
}

func anyMuscleOverlap(muscles []string, targets map[string]struct{}) bool {
	for _, muscle := range muscles {
		if _, ok := targets[strings.ToLower(muscle)]; ok {
			return true
		}
	}
	return false
}

func toLowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}
	return set
}
