package trainer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ironlog/internal/exercise"
	"ironlog/internal/workoutlog"
)

func exerciseNames(exercises []exercise.Exercise) []string {
	names := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		names = append(names, ex.Name)
	}
	return names
}

func TestFilterExercises(t *testing.T) {
	catalog := []exercise.Exercise{
		{ID: 1, Name: "Push-ups", Difficulty: exercise.DifficultyBeginner,
			MuscleGroups: []string{"chest", "triceps"}},
		{ID: 2, Name: "Bench Press", Difficulty: exercise.DifficultyIntermediate,
			MuscleGroups: []string{"chest"}, Equipment: []string{"barbell", "bench"}},
		{ID: 3, Name: "Lunges", Difficulty: exercise.DifficultyBeginner,
			MuscleGroups: []string{"quadriceps"}, Equipment: []string{"dumbbells"}},
		{ID: 4, Name: "Plank", Difficulty: exercise.DifficultyBeginner,
			MuscleGroups: []string{"core"}},
		{ID: 4, Name: "Plank", Difficulty: exercise.DifficultyBeginner,
			MuscleGroups: []string{"core"}},
	}

	tests := []struct {
		name     string
		criteria filterCriteria
		want     []string
	}{
		{
			name:     "no available equipment disables the equipment check",
			criteria: filterCriteria{difficulty: exercise.DifficultyBeginner},
			want:     []string{"Push-ups", "Lunges", "Plank"},
		},
		{
			name: "any owned piece of equipment is enough",
			criteria: filterCriteria{
				difficulty:         exercise.DifficultyIntermediate,
				availableEquipment: []string{"Barbell"},
			},
			want: []string{"Bench Press"},
		},
		{
			name: "bodyweight passes any equipment filter",
			criteria: filterCriteria{
				difficulty:         exercise.DifficultyBeginner,
				availableEquipment: []string{"kettlebell"},
			},
			want: []string{"Push-ups", "Plank"},
		},
		{
			name: "target muscles require overlap",
			criteria: filterCriteria{
				difficulty:    exercise.DifficultyBeginner,
				targetMuscles: []string{"CHEST"},
			},
			want: []string{"Push-ups"},
		},
		{
			name: "recent exercises are excluded",
			criteria: filterCriteria{
				difficulty: exercise.DifficultyBeginner,
				exclude:    map[int64]struct{}{1: {}},
			},
			want: []string{"Lunges", "Plank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exerciseNames(filterExercises(catalog, tt.criteria))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filterExercises() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectDiverse(t *testing.T) {
	candidates := []exercise.Exercise{
		{ID: 1, Name: "Bench Press", MuscleGroups: []string{"chest", "triceps"}},
		{ID: 2, Name: "Push-ups", MuscleGroups: []string{"chest", "triceps"}},
		{ID: 3, Name: "Dumbbell Flyes", MuscleGroups: []string{"chest"}},
		{ID: 4, Name: "Tricep Dips", MuscleGroups: []string{"triceps", "chest"}},
		{ID: 5, Name: "Squats", MuscleGroups: []string{"quadriceps", "glutes"}},
		{ID: 6, Name: "Lunges", MuscleGroups: []string{"quadriceps", "glutes"}},
		{ID: 7, Name: "Plank", MuscleGroups: []string{"core"}},
		{ID: 8, Name: "Pull-ups", MuscleGroups: []string{"back", "biceps"}},
	}

	got := exerciseNames(selectDiverse(candidates, maxWorkoutExercises))

	// The first three are taken unconditionally even though they overlap.
	// After that Tricep Dips and Lunges bring nothing new and are skipped.
	want := []string{"Bench Press", "Push-ups", "Dumbbell Flyes", "Squats", "Plank", "Pull-ups"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selectDiverse() mismatch (-want +got):\n%s", diff)
	}

	if got := selectDiverse(candidates, 2); len(got) != 2 {
		t.Errorf("selectDiverse() with max 2 returned %d exercises", len(got))
	}
}

func TestSelectForProgram(t *testing.T) {
	candidates := []exercise.Exercise{
		{ID: 1, Name: "Bench Press", MuscleGroups: []string{"chest"}},
		{ID: 2, Name: "Push-ups", MuscleGroups: []string{"chest"}},
		{ID: 3, Name: "Dumbbell Flyes", MuscleGroups: []string{"chest"}},
		{ID: 4, Name: "Incline Press", MuscleGroups: []string{"chest"}},
		{ID: 5, Name: "Cable Crossover", MuscleGroups: []string{"chest"}},
		{ID: 6, Name: "Dips", MuscleGroups: []string{"chest"}},
		{ID: 7, Name: "Pull-ups", MuscleGroups: []string{"back"}},
	}

	// Multi-week programs take the top of the pool as-is so every training
	// day repeats the same exercises.
	got := exerciseNames(selectForProgram(TypeMultiWeek, candidates))
	want := []string{"Bench Press", "Push-ups", "Dumbbell Flyes", "Incline Press", "Cable Crossover", "Dips"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selectForProgram(multi_week) mismatch (-want +got):\n%s", diff)
	}

	short := selectForProgram(TypeMultiWeek, candidates[:2])
	if len(short) != 2 {
		t.Errorf("selectForProgram(multi_week) with 2 candidates returned %d", len(short))
	}

	// Daily programs still go through the diversity selector, which skips
	// repeats of already covered muscles once the warm-up slots are filled.
	got = exerciseNames(selectForProgram(TypeDaily, candidates))
	want = []string{"Bench Press", "Push-ups", "Dumbbell Flyes", "Pull-ups"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selectForProgram(daily) mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeHistory(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	rating := func(r int) *int { return &r }

	logs := []workoutlog.Log{
		{ExerciseID: 1, Date: now.AddDate(0, 0, -1), DifficultyRating: rating(8)},
		{ExerciseID: 2, Date: now.AddDate(0, 0, -2)},
		{ExerciseID: 5, Date: now.AddDate(0, 0, -3)},
		{ExerciseID: 3, Date: now.AddDate(0, 0, -10), DifficultyRating: rating(5)},
		// Outside the 30-day window, must be ignored entirely.
		{ExerciseID: 4, Date: now.AddDate(0, 0, -40), DifficultyRating: rating(10)},
	}
	muscles := map[int64][]string{
		1: {"chest", "triceps"},
		2: {"quadriceps"},
		3: {"chest"},
		4: {"back"},
		5: {"core"},
	}

	got := summarizeHistory(logs, muscles, now)

	if !got.HasHistory {
		t.Error("HasHistory = false, want true")
	}
	if got.WorkoutCount != 4 {
		t.Errorf("WorkoutCount = %d, want 4", got.WorkoutCount)
	}
	// Unrated workouts count as 5: (8 + 5 + 5 + 5) / 4.
	if want := 5.75; got.AvgDifficulty != want {
		t.Errorf("AvgDifficulty = %v, want %v", got.AvgDifficulty, want)
	}
	wantFrequency := map[string]int{"chest": 2, "triceps": 1, "quadriceps": 1, "core": 1}
	if diff := cmp.Diff(wantFrequency, got.MuscleFrequency); diff != "" {
		t.Errorf("MuscleFrequency mismatch (-want +got):\n%s", diff)
	}
	if got.RecentWorkoutCount != 3 {
		t.Errorf("RecentWorkoutCount = %d, want 3", got.RecentWorkoutCount)
	}
	// The program exclusion reaches back 3 days, the suggestion exclusion
	// only 2, so the workout 3 days ago is in the first set but not the
	// second.
	wantRecent := map[int64]struct{}{1: {}, 2: {}, 5: {}}
	if diff := cmp.Diff(wantRecent, got.RecentExerciseIDs); diff != "" {
		t.Errorf("RecentExerciseIDs mismatch (-want +got):\n%s", diff)
	}
	wantSuggestion := map[int64]struct{}{1: {}, 2: {}}
	if diff := cmp.Diff(wantSuggestion, got.SuggestionExcludedIDs); diff != "" {
		t.Errorf("SuggestionExcludedIDs mismatch (-want +got):\n%s", diff)
	}

	empty := summarizeHistory(nil, muscles, now)
	if empty.HasHistory || empty.WorkoutCount != 0 {
		t.Errorf("summarizeHistory(nil) = %+v, want zero summary", empty)
	}
}

func TestBuildRuleBasedProgram(t *testing.T) {
	selected := []exercise.Exercise{
		{ID: 1, Name: "Push-ups", MuscleGroups: []string{"chest", "triceps"}},
		{ID: 2, Name: "Squats", MuscleGroups: []string{"quadriceps"}},
	}

	t.Run("daily", func(t *testing.T) {
		program := buildRuleBasedProgram(ProgramRequest{
			Type: TypeDaily, DaysPerWeek: 3, TimePerSessionMinutes: 45,
		}, selected)

		if program.Name != "Daily Workout Plan" {
			t.Errorf("Name = %q", program.Name)
		}
		if program.Source != SourceRuleBased || program.Status != StatusDraft {
			t.Errorf("Source/Status = %s/%s", program.Source, program.Status)
		}
		if len(program.Days) != 1 || len(program.Weeks) != 0 {
			t.Fatalf("Days/Weeks = %d/%d, want 1/0", len(program.Days), len(program.Weeks))
		}
		day := program.Days[0]
		if diff := cmp.Diff([]string{"chest", "triceps", "quadriceps"}, day.FocusAreas); diff != "" {
			t.Errorf("FocusAreas mismatch (-want +got):\n%s", diff)
		}
		if day.EstimatedDurationMinutes != 45 {
			t.Errorf("EstimatedDurationMinutes = %d, want 45", day.EstimatedDurationMinutes)
		}
		entries := day.Exercises
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		first := entries[0]
		if first.Sets != 3 || first.Reps.String() != "10-12" || first.RestSeconds != 60 || first.Position != 0 {
			t.Errorf("entry = %+v, want 3x10-12 with 60s rest at position 0", first)
		}
	})

	t.Run("multi-week", func(t *testing.T) {
		program := buildRuleBasedProgram(ProgramRequest{
			Type: TypeMultiWeek, DurationWeeks: 4, DaysPerWeek: 2, TimePerSessionMinutes: 30,
		}, selected)

		if program.Name != "4-Week Training Program" {
			t.Errorf("Name = %q", program.Name)
		}
		if len(program.Weeks) != 4 {
			t.Fatalf("weeks = %d, want 4", len(program.Weeks))
		}
		for _, week := range program.Weeks {
			if len(week.Days) != 2 {
				t.Errorf("week %d has %d days, want 2", week.WeekNumber, len(week.Days))
			}
			for _, day := range week.Days {
				if len(day.FocusAreas) != 3 || day.EstimatedDurationMinutes != 30 {
					t.Errorf("week %d day %d = %v/%d, want focus areas and 30 minutes",
						week.WeekNumber, day.DayNumber, day.FocusAreas, day.EstimatedDurationMinutes)
				}
			}
		}
	})
}

func TestBuildProgramPromptMuscleFrequency(t *testing.T) {
	history := HistorySummary{
		HasHistory:      true,
		WorkoutCount:    8,
		AvgDifficulty:   6.5,
		MuscleFrequency: map[string]int{"chest": 4, "back": 2, "abs": 2},
	}

	prompt := buildProgramPrompt(ProgramRequest{Type: TypeDaily, TimePerSessionMinutes: 45}, nil, history)

	// Most-trained muscle first, ties alphabetical.
	if !strings.Contains(prompt, "chest 4x, abs 2x, back 2x") {
		t.Errorf("prompt is missing the muscle frequency line:\n%s", prompt)
	}

	fresh := buildProgramPrompt(ProgramRequest{Type: TypeDaily}, nil, HistorySummary{})
	if !strings.Contains(fresh, "no training history") {
		t.Errorf("prompt for a fresh user = %q", fresh)
	}
}

func TestResolveAIProgram(t *testing.T) {
	candidates := []exercise.Exercise{
		{ID: 10, Name: "Push-ups", MuscleGroups: []string{"chest"}},
		{ID: 11, Name: "Squats", MuscleGroups: []string{"quadriceps"}},
	}
	raw := aiProgram{
		Name:        "Foundation Builder",
		Description: "Easy start",
		Weeks: []aiWeek{{
			WeekNumber: 1,
			Workouts: []aiWorkout{{
				DayNumber: 1,
				Name:      "Full Body",
				Exercises: []aiWorkoutExercise{
					{ExerciseName: "push-ups", Sets: 4, Reps: FixedReps(8), RestSeconds: 90},
					{ExerciseName: "Hip Thrust Machine", Sets: 3, Reps: FixedReps(12), RestSeconds: 60},
					{ExerciseName: " Squats ", Sets: 3, Reps: RepRange("8-10"), RestSeconds: 120},
				},
			}},
		}},
	}

	program, unmatched, err := resolveAIProgram(ProgramRequest{Type: TypeDaily, TimePerSessionMinutes: 40}, raw, candidates)
	if err != nil {
		t.Fatalf("resolveAIProgram() error = %v", err)
	}
	if unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", unmatched)
	}
	if program.Source != SourceAI || program.Name != "Foundation Builder" {
		t.Errorf("program = %+v", program)
	}
	if len(program.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(program.Days))
	}
	// The model gave neither focus areas nor a duration, so both are backfilled
	// from the matched exercises and the request.
	if diff := cmp.Diff([]string{"chest", "quadriceps"}, program.Days[0].FocusAreas); diff != "" {
		t.Errorf("FocusAreas mismatch (-want +got):\n%s", diff)
	}
	if program.Days[0].EstimatedDurationMinutes != 40 {
		t.Errorf("EstimatedDurationMinutes = %d, want 40", program.Days[0].EstimatedDurationMinutes)
	}
	entries := program.Days[0].Exercises
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Name matching is case- and whitespace-insensitive, the canonical
	// catalog name wins, and positions are compacted after drops.
	if entries[0].ExerciseName != "Push-ups" || entries[1].ExerciseName != "Squats" {
		t.Errorf("entry names = %q, %q", entries[0].ExerciseName, entries[1].ExerciseName)
	}
	if entries[1].Position != 1 {
		t.Errorf("second entry position = %d, want 1", entries[1].Position)
	}
	if entries[1].Reps.String() != "8-10" {
		t.Errorf("second entry reps = %s, want 8-10", entries[1].Reps)
	}

	t.Run("nothing matched", func(t *testing.T) {
		_, unmatched, err := resolveAIProgram(ProgramRequest{Type: TypeDaily}, raw, nil)
		if err == nil {
			t.Error("resolveAIProgram() error = nil, want error")
		}
		if unmatched != 3 {
			t.Errorf("unmatched = %d, want 3", unmatched)
		}
	})
}

func TestWorkoutForDate(t *testing.T) {
	started := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC) // a Monday
	program := Program{
		Type:          TypeMultiWeek,
		DurationWeeks: 2,
		DaysPerWeek:   3,
		StartedAt:     &started,
		Weeks: []WeeklyPlan{
			{WeekNumber: 1, Days: []DailyWorkout{
				{DayNumber: 1, Name: "W1D1"}, {DayNumber: 2, Name: "W1D2"}, {DayNumber: 3, Name: "W1D3"},
			}},
			{WeekNumber: 2, Days: []DailyWorkout{
				{DayNumber: 1, Name: "W2D1"}, {DayNumber: 2, Name: "W2D2"}, {DayNumber: 3, Name: "W2D3"},
			}},
		},
	}

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"start day", time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), "W1D1"},
		{"tuesday of week one", time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC), "W1D2"},
		{"weekday clamps to days per week", time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC), "W1D3"},
		{"second week", time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), "W2D2"},
		{"past the end clamps to last week", time.Date(2026, 9, 21, 9, 0, 0, 0, time.UTC), "W2D1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workoutForDate(program, tt.now); got.Name != tt.want {
				t.Errorf("workoutForDate() = %q, want %q", got.Name, tt.want)
			}
		})
	}

	t.Run("daily program", func(t *testing.T) {
		daily := Program{Type: TypeDaily, Days: []DailyWorkout{{DayNumber: 1, Name: "Daily"}}}
		if got := workoutForDate(daily, time.Now()); got.Name != "Daily" {
			t.Errorf("workoutForDate() = %q, want Daily", got.Name)
		}
	})
}

func TestRepSpecJSON(t *testing.T) {
	if got := RepRange("10-12").String(); got != "10-12" {
		t.Errorf("String() = %q, want 10-12", got)
	}
	if got := FixedReps(8).String(); got != "8" {
		t.Errorf("String() = %q, want 8", got)
	}
	if spec := ParseRepSpec("15"); spec.IsRange() {
		t.Error("ParseRepSpec(15) parsed as range")
	}

	var fromNumber RepSpec
	if err := fromNumber.UnmarshalJSON([]byte("8")); err != nil {
		t.Fatalf("UnmarshalJSON(8) error = %v", err)
	}
	if fromNumber.String() != "8" || fromNumber.IsRange() {
		t.Errorf("UnmarshalJSON(8) = %v", fromNumber)
	}

	var fromString RepSpec
	if err := fromString.UnmarshalJSON([]byte(`"10-12"`)); err != nil {
		t.Fatalf(`UnmarshalJSON("10-12") error = %v`, err)
	}
	data, err := fromString.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(data) != `"10-12"` {
		t.Errorf(`MarshalJSON() = %s, want "10-12"`, data)
	}

	var invalid RepSpec
	if err := invalid.UnmarshalJSON([]byte("[1]")); err == nil {
		t.Error("UnmarshalJSON([1]) error = nil, want error")
	}
}
