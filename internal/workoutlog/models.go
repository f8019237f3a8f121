package workoutlog

import "time"

// Log records one performed exercise within a workout.
type Log struct {
	ID              int64     `json:"id"`
	ExerciseID      int64     `json:"exercise_id"`
	ExerciseName    string    `json:"exercise_name"`
	Date            time.Time `json:"date"`
	SetsCompleted   int       `json:"sets_completed"`
	Reps            []int     `json:"reps"`
	WeightsKg       []float64 `json:"weights_kg,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	// DifficultyRating is the perceived difficulty from 1 to 10. Nil when
	// the user skipped rating.
	DifficultyRating *int `json:"difficulty_rating,omitempty"`
}

// Stats summarizes a user's whole training history.
type Stats struct {
	TotalWorkouts int             `json:"total_workouts"`
	TotalSets     int             `json:"total_sets"`
	TopExercises  []ExerciseCount `json:"top_exercises"`
}

// ExerciseCount pairs an exercise with how often it was performed.
type ExerciseCount struct {
	ExerciseID   int64  `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	Count        int    `json:"count"`
}

// WeeklyStreak is the Monday-to-Sunday activity calendar of the current week.
type WeeklyStreak struct {
	Days             []bool    `json:"days"`
	WorkoutsThisWeek int       `json:"workouts_this_week"`
	WeekStart        time.Time `json:"week_start"`
}

// StreakInfo describes consecutive training days.
type StreakInfo struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	Active        bool `json:"active"`
}

// WeekMetrics are the per-week aggregates used in the week comparison.
type WeekMetrics struct {
	Workouts        int     `json:"workouts"`
	Sets            int     `json:"sets"`
	VolumeKg        float64 `json:"volume_kg"`
	WorkoutDays     int     `json:"workout_days"`
	UniqueExercises int     `json:"unique_exercises"`
}

// WeekChange holds the percent change per metric between two weeks.
type WeekChange struct {
	Workouts        float64 `json:"workouts"`
	Sets            float64 `json:"sets"`
	VolumeKg        float64 `json:"volume_kg"`
	WorkoutDays     float64 `json:"workout_days"`
	UniqueExercises float64 `json:"unique_exercises"`
}

// WeekComparison compares the current week against the previous one.
type WeekComparison struct {
	ThisWeek WeekMetrics `json:"this_week"`
	LastWeek WeekMetrics `json:"last_week"`
	Change   WeekChange  `json:"change"`
}

// WeekCount is one bar in the frequency chart.
type WeekCount struct {
	WeekStart time.Time `json:"week_start"`
	Count     int       `json:"count"`
}

// Trend classifies the direction of the workout frequency.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// FrequencyChart is the weekly workout count history with a trend estimate.
type FrequencyChart struct {
	Weeks []WeekCount `json:"weeks"`
	Trend Trend       `json:"trend"`
}
