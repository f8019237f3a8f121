package trainer

import (
	"strings"
	"time"

	"ironlog/internal/workoutlog"
)

const (
	historyWindowDays = 30
	// exclusionWindowDays keeps exercises performed in the last days out of
	// newly generated programs.
	exclusionWindowDays = 3
	// suggestionWindowDays is the shorter repeat-avoidance window for quick
	// suggestions.
	suggestionWindowDays = 2
	// neutralDifficulty substitutes for missing difficulty ratings so that
	// unrated workouts neither raise nor lower the average.
	neutralDifficulty = 5
)

// summarizeHistory condenses the user's logs into the signals the generator
// and insight engine work from. musclesByExercise maps exercise IDs to their
// muscle groups and feeds the per-muscle frequency count. An empty history
// yields a zero-value summary with HasHistory false, never an error.
func summarizeHistory(logs []workoutlog.Log, musclesByExercise map[int64][]string, now time.Time) HistorySummary {
	summary := HistorySummary{
		MuscleFrequency:       make(map[string]int),
		RecentExerciseIDs:     make(map[int64]struct{}),
		SuggestionExcludedIDs: make(map[int64]struct{}),
	}
	if len(logs) == 0 {
		return summary
	}
	summary.HasHistory = true

	windowStart := now.AddDate(0, 0, -historyWindowDays)
	exclusionStart := now.AddDate(0, 0, -exclusionWindowDays)
	suggestionStart := now.AddDate(0, 0, -suggestionWindowDays)

	difficultySum := 0
	for _, log := range logs {
		if log.Date.Before(windowStart) {
			continue
		}
		summary.WorkoutCount++
		if log.DifficultyRating != nil {
			difficultySum += *log.DifficultyRating
		} else {
			difficultySum += neutralDifficulty
		}
		for _, muscle := range musclesByExercise[log.ExerciseID] {
			summary.MuscleFrequency[strings.ToLower(muscle)]++
		}
		if !log.Date.Before(exclusionStart) {
			summary.RecentWorkoutCount++
			summary.RecentExerciseIDs[log.ExerciseID] = struct{}{}
		}
		if !log.Date.Before(suggestionStart) {
			summary.SuggestionExcludedIDs[log.ExerciseID] = struct{}{}
		}
	}
	if summary.WorkoutCount > 0 {
		summary.AvgDifficulty = float64(difficultySum) / float64(summary.WorkoutCount)
	}
	return summary
}
