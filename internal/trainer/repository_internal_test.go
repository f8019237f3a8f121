package trainer

import (
	"testing"

	"ironlog/internal/sqlite"
	"ironlog/internal/testhelpers"
)

func TestInsertProgramIsAtomic(t *testing.T) {
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := newSQLiteRepository(db, logger)

	result, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES ('lifter@example.com', x'00')")
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get user id: %v", err)
	}

	var pushupsID int64
	if err := db.ReadOnly.QueryRowContext(ctx,
		"SELECT id FROM exercises WHERE name = 'Push-ups'").Scan(&pushupsID); err != nil {
		t.Fatalf("Failed to look up fixture exercise: %v", err)
	}

	entry := func(exerciseID int64) []ExerciseEntry {
		return []ExerciseEntry{{
			ExerciseID: exerciseID, ExerciseName: "Push-ups",
			Sets: 3, Reps: RepRange("10-12"), RestSeconds: 60,
		}}
	}
	program := Program{
		Name:          "2-Week Training Program",
		Type:          TypeMultiWeek,
		DurationWeeks: 2,
		DaysPerWeek:   1,
		Status:        StatusDraft,
		Source:        SourceRuleBased,
		Weeks: []WeeklyPlan{
			{WeekNumber: 1, Days: []DailyWorkout{
				{DayNumber: 1, Name: "Day 1", Exercises: entry(pushupsID)},
			}},
			// The bad exercise id sits in the second week. Foreign keys are
			// deferred to COMMIT, so every insert before it succeeds and the
			// failure only surfaces at the end of the transaction.
			{WeekNumber: 2, Days: []DailyWorkout{
				{DayNumber: 1, Name: "Day 1", Exercises: entry(999999)},
			}},
		},
	}

	if _, err := repo.insertProgram(ctx, userID, program); err == nil {
		t.Fatal("insertProgram() error = nil, want foreign key failure")
	}

	// A failed insert must leave nothing behind, not a partial tree.
	for _, table := range []string{"training_programs", "weekly_plans", "daily_workouts", "workout_exercises"} {
		var count int
		if err := db.ReadOnly.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("Failed to count %s rows: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after a failed insert, want 0", table, count)
		}
	}
}
