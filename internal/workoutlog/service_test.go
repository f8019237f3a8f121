package workoutlog_test

import (
	"context"
	"testing"
	"time"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
	"ironlog/internal/testhelpers"
	"ironlog/internal/workoutlog"
)

func newTestService(t *testing.T) (*workoutlog.Service, *sqlite.Database) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return workoutlog.NewService(db, logger), db
}

func insertTestUser(ctx context.Context, t *testing.T, db *sqlite.Database) int64 {
	t.Helper()
	result, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?)",
		"lifter@example.com", []byte("hash"))
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get user ID: %v", err)
	}
	return id
}

func fixtureExerciseID(ctx context.Context, t *testing.T, db *sqlite.Database, name string) int64 {
	t.Helper()
	var id int64
	if err := db.ReadOnly.QueryRowContext(ctx,
		"SELECT id FROM exercises WHERE name = ?", name).Scan(&id); err != nil {
		t.Fatalf("Failed to look up fixture exercise %q: %v", name, err)
	}
	return id
}

func TestCreateGetDelete(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db)
	squatsID := fixtureExerciseID(ctx, t, db, "Squats")

	rating := 7
	created, err := svc.Create(ctx, userID, workoutlog.Log{
		ExerciseID:       squatsID,
		Date:             time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		SetsCompleted:    3,
		Reps:             []int{10, 8, 6},
		WeightsKg:        []float64{100, 105, 110},
		Notes:            "felt strong",
		DifficultyRating: &rating,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ExerciseName != "Squats" {
		t.Errorf("Create() exercise name = %q, want Squats", created.ExerciseName)
	}

	got, err := svc.Get(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DifficultyRating == nil || *got.DifficultyRating != rating {
		t.Errorf("Get() difficulty rating = %v, want %d", got.DifficultyRating, rating)
	}
	if len(got.Reps) != 3 || got.Reps[2] != 6 {
		t.Errorf("Get() reps = %v, want [10 8 6]", got.Reps)
	}

	// Another user must not see the log.
	otherResult, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?)", "other@example.com", []byte("hash"))
	if err != nil {
		t.Fatalf("Failed to insert second user: %v", err)
	}
	otherID, _ := otherResult.LastInsertId()
	if _, err = svc.Get(ctx, otherID, created.ID); !errors.Is(err, workoutlog.ErrNotFound) {
		t.Errorf("Get() as other user error = %v, want ErrNotFound", err)
	}

	if err = svc.Delete(ctx, userID, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err = svc.Get(ctx, userID, created.ID); !errors.Is(err, workoutlog.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db)
	squatsID := fixtureExerciseID(ctx, t, db, "Squats")

	tests := []struct {
		name string
		log  workoutlog.Log
	}{
		{
			name: "reps length mismatch",
			log:  workoutlog.Log{ExerciseID: squatsID, SetsCompleted: 3, Reps: []int{10}},
		},
		{
			name: "rating out of range",
			log: workoutlog.Log{
				ExerciseID: squatsID, SetsCompleted: 1, Reps: []int{10},
				DifficultyRating: intPtr(11),
			},
		},
		{
			name: "unknown exercise",
			log:  workoutlog.Log{ExerciseID: 99999, SetsCompleted: 1, Reps: []int{10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, userID, tt.log); !errors.Is(err, workoutlog.ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db)
	squatsID := fixtureExerciseID(ctx, t, db, "Squats")
	pushupsID := fixtureExerciseID(ctx, t, db, "Push-ups")

	for range 3 {
		if _, err := svc.Create(ctx, userID, workoutlog.Log{
			ExerciseID: squatsID, SetsCompleted: 3, Reps: []int{10, 10, 10},
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := svc.Create(ctx, userID, workoutlog.Log{
		ExerciseID: pushupsID, SetsCompleted: 2, Reps: []int{15, 12},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stats, err := svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalWorkouts != 4 {
		t.Errorf("TotalWorkouts = %d, want 4", stats.TotalWorkouts)
	}
	if stats.TotalSets != 11 {
		t.Errorf("TotalSets = %d, want 11", stats.TotalSets)
	}
	if len(stats.TopExercises) != 2 || stats.TopExercises[0].ExerciseName != "Squats" {
		t.Errorf("TopExercises = %v, want Squats first", stats.TopExercises)
	}
}

func intPtr(i int) *int {
	return &i
}
