package trainer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ironlog/internal/exercise"
	"ironlog/internal/user"
)

// ProgramStatus is the lifecycle state of a training program.
//
// Allowed transitions: draft -> active (accept), active -> completed,
// active -> archived. Accepting a program archives any other active one.
type ProgramStatus string

const (
	StatusDraft     ProgramStatus = "draft"
	StatusActive    ProgramStatus = "active"
	StatusCompleted ProgramStatus = "completed"
	StatusArchived  ProgramStatus = "archived"
)

// ProgramType distinguishes single-day programs from multi-week plans.
type ProgramType string

const (
	TypeDaily     ProgramType = "daily"
	TypeMultiWeek ProgramType = "multi_week"
)

// Source records which generator produced a program.
type Source string

const (
	SourceRuleBased Source = "rule_based"
	SourceAI        Source = "ai"
)

// RepSpec is either a fixed rep count or a rep range like "10-12". It
// marshals to a JSON number for fixed reps and a JSON string for ranges.
type RepSpec struct {
	fixed int
	rng   string
}

// FixedReps creates a RepSpec with an exact rep count.
func FixedReps(count int) RepSpec {
	return RepSpec{fixed: count}
}

// RepRange creates a RepSpec with a range such as "10-12".
func RepRange(repRange string) RepSpec {
	return RepSpec{rng: repRange}
}

// IsRange reports whether the spec is a range rather than a fixed count.
func (r RepSpec) IsRange() bool {
	return r.rng != ""
}

// String renders the spec the way it is stored in the database.
func (r RepSpec) String() string {
	if r.rng != "" {
		return r.rng
	}
	return strconv.Itoa(r.fixed)
}

// ParseRepSpec reads a database or LLM representation. Plain integers become
// fixed counts, everything else is treated as a range.
func ParseRepSpec(raw string) RepSpec {
	raw = strings.TrimSpace(raw)
	if count, err := strconv.Atoi(raw); err == nil {
		return FixedReps(count)
	}
	return RepRange(raw)
}

func (r RepSpec) MarshalJSON() ([]byte, error) {
	if r.rng != "" {
		return json.Marshal(r.rng)
	}
	return json.Marshal(r.fixed)
}

func (r *RepSpec) UnmarshalJSON(data []byte) error {
	var count int
	if err := json.Unmarshal(data, &count); err == nil {
		*r = FixedReps(count)
		return nil
	}
	var repRange string
	if err := json.Unmarshal(data, &repRange); err != nil {
		return fmt.Errorf("rep spec must be a number or a string: %w", err)
	}
	*r = ParseRepSpec(repRange)
	return nil
}

// ExerciseEntry is one prescribed exercise within a daily workout.
type ExerciseEntry struct {
	ExerciseID   int64   `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	Position     int     `json:"position"`
	Sets         int     `json:"sets"`
	Reps         RepSpec `json:"reps"`
	RestSeconds  int     `json:"rest_seconds"`
	Intensity    string  `json:"intensity,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// DailyWorkout is a single prescribed training day.
type DailyWorkout struct {
	ID                       int64           `json:"id"`
	DayNumber                int             `json:"day_number"`
	Name                     string          `json:"name"`
	FocusAreas               []string        `json:"focus_areas,omitempty"`
	EstimatedDurationMinutes int             `json:"estimated_duration_minutes,omitempty"`
	Exercises                []ExerciseEntry `json:"exercises"`
}

// WeeklyPlan groups the daily workouts of one program week.
type WeeklyPlan struct {
	ID         int64          `json:"id"`
	WeekNumber int            `json:"week_number"`
	Focus      string         `json:"focus,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Days       []DailyWorkout `json:"days"`
}

// Program is a generated training program. Daily programs carry their
// workouts in Days; multi-week programs carry them nested under Weeks.
//
// FitnessLevel, Goals, and Equipment are a snapshot of the parameters the
// program was generated with. Later profile edits do not change them.
type Program struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	Description           string            `json:"description,omitempty"`
	Type                  ProgramType       `json:"program_type"`
	DurationWeeks         int               `json:"duration_weeks,omitempty"`
	DaysPerWeek           int               `json:"days_per_week,omitempty"`
	TimePerSessionMinutes int               `json:"time_per_session_minutes,omitempty"`
	FitnessLevel          user.FitnessLevel `json:"fitness_level,omitempty"`
	Goals                 []string          `json:"goals,omitempty"`
	Equipment             []string          `json:"equipment,omitempty"`
	Status                ProgramStatus     `json:"status"`
	Source                Source            `json:"source"`
	CreatedAt             time.Time         `json:"created_at"`
	AcceptedAt            *time.Time        `json:"accepted_at,omitempty"`
	StartedAt             *time.Time        `json:"started_at,omitempty"`
	Weeks                 []WeeklyPlan      `json:"weeks,omitempty"`
	Days                  []DailyWorkout    `json:"days,omitempty"`
}

// ProgramRequest captures the generation parameters.
type ProgramRequest struct {
	Name                  string            `json:"name"`
	Type                  ProgramType       `json:"program_type"`
	DurationWeeks         int               `json:"duration_weeks"`
	DaysPerWeek           int               `json:"days_per_week"`
	TimePerSessionMinutes int               `json:"time_per_session_minutes"`
	TargetMuscleGroups    []string          `json:"target_muscle_groups"`
	Goals                 []string          `json:"goals"`
	Equipment             []string          `json:"equipment"`
	FitnessLevel          user.FitnessLevel `json:"fitness_level"`
}

// GenerationResult is the outcome of a program generation.
type GenerationResult struct {
	Program Program `json:"program"`
	// UnmatchedExercises counts LLM exercise names that did not resolve
	// against the catalog and were dropped.
	UnmatchedExercises int `json:"unmatched_exercises"`
}

// HistorySummary condenses recent training history for generation and
// insights. HasHistory is false for users who never logged a workout.
type HistorySummary struct {
	HasHistory bool
	// WorkoutCount is the number of logs in the last 30 days.
	WorkoutCount int
	// AvgDifficulty is the mean difficulty rating over the last 30 days
	// where unrated workouts count as 5.
	AvgDifficulty float64
	// MuscleFrequency counts how often each muscle group was trained in
	// the last 30 days.
	MuscleFrequency map[string]int
	// RecentWorkoutCount is the number of logs in the last 3 days, used as
	// a fatigue signal.
	RecentWorkoutCount int
	// RecentExerciseIDs are exercises performed within the last 3 days,
	// kept out of newly generated programs.
	RecentExerciseIDs map[int64]struct{}
	// SuggestionExcludedIDs are exercises performed within the last 2
	// days, kept out of quick suggestions.
	SuggestionExcludedIDs map[int64]struct{}
}

// Insight is an adaptation observation derived from history. Insights are
// append-only; repeated generation may produce duplicates. Recommendation
// carries the suggested action, separate from the narrative Message.
type Insight struct {
	ID             int64              `json:"id"`
	Type           string             `json:"insight_type"`
	Message        string             `json:"message"`
	Recommendation string             `json:"recommendation,omitempty"`
	Data           map[string]float64 `json:"data"`
	Applied        bool               `json:"applied"`
	CreatedAt      time.Time          `json:"created_at"`
}

const (
	InsightRecoveryNeeded      = "recovery_needed"
	InsightProgressionDetected = "progression_detected"
)

// SuggestionRequest asks for a one-off workout suggestion.
type SuggestionRequest struct {
	FitnessLevel       user.FitnessLevel `json:"fitness_level"`
	TargetMuscleGroups []string          `json:"target_muscle_groups"`
	Equipment          []string          `json:"equipment"`
	DurationMinutes    int               `json:"duration_minutes"`
}

// Suggestion is a quick workout suggestion outside of any program.
type Suggestion struct {
	Exercises []exercise.Exercise `json:"exercises"`
	Rationale string              `json:"rationale"`
}
