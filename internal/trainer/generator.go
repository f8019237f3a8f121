package trainer

import (
	"fmt"
	"strings"

	"ironlog/internal/exercise"
)

const (
	defaultSets        = 3
	defaultRepRange    = "10-12"
	defaultRestSeconds = 60
)

// buildRuleBasedProgram assembles a program from the selected exercises with
// fixed prescriptions. Multi-week programs repeat the same workout on every
// training day; progression comes from later regenerations, not from the
// plan itself.
func buildRuleBasedProgram(request ProgramRequest, selected []exercise.Exercise) Program {
	program := Program{
		Name:                  request.Name,
		Type:                  request.Type,
		DaysPerWeek:           request.DaysPerWeek,
		TimePerSessionMinutes: request.TimePerSessionMinutes,
		Status:                StatusDraft,
		Source:                SourceRuleBased,
	}

	focus := focusAreas(selected)

	if request.Type == TypeDaily {
		if program.Name == "" {
			program.Name = "Daily Workout Plan"
		}
		program.Days = []DailyWorkout{{
			DayNumber:                1,
			Name:                     "Daily Workout",
			FocusAreas:               focus,
			EstimatedDurationMinutes: request.TimePerSessionMinutes,
			Exercises:                buildEntries(selected),
		}}
		return program
	}

	program.DurationWeeks = request.DurationWeeks
	if program.Name == "" {
		program.Name = fmt.Sprintf("%d-Week Training Program", request.DurationWeeks)
	}
	for week := 1; week <= request.DurationWeeks; week++ {
		plan := WeeklyPlan{WeekNumber: week}
		for day := 1; day <= request.DaysPerWeek; day++ {
			plan.Days = append(plan.Days, DailyWorkout{
				DayNumber:                day,
				Name:                     fmt.Sprintf("Day %d", day),
				FocusAreas:               focus,
				EstimatedDurationMinutes: request.TimePerSessionMinutes,
				Exercises:                buildEntries(selected),
			})
		}
		program.Weeks = append(program.Weeks, plan)
	}
	return program
}

// focusAreas collects the muscle groups worked by the selected exercises,
// first occurrence first.
func focusAreas(selected []exercise.Exercise) []string {
	seen := make(map[string]struct{})
	var areas []string
	for _, ex := range selected {
		for _, muscle := range ex.MuscleGroups {
			muscle = strings.ToLower(muscle)
			if _, ok := seen[muscle]; ok {
				continue
			}
			seen[muscle] = struct{}{}
			areas = append(areas, muscle)
		}
	}
	return areas
}

// buildEntries prescribes 3 sets of 10-12 reps with 60 seconds rest for each
// selected exercise, in selection order.
func buildEntries(selected []exercise.Exercise) []ExerciseEntry {
	entries := make([]ExerciseEntry, 0, len(selected))
	for i, ex := range selected {
		entries = append(entries, ExerciseEntry{
			ExerciseID:   ex.ID,
			ExerciseName: ex.Name,
			Position:     i,
			Sets:         defaultSets,
			Reps:         RepRange(defaultRepRange),
			RestSeconds:  defaultRestSeconds,
		})
	}
	return entries
}
