package exercise_test

import (
	"context"
	"strings"
	"testing"

	"ironlog/internal/errors"
	"ironlog/internal/exercise"
	"ironlog/internal/sqlite"
	"ironlog/internal/testhelpers"
)

func newTestService(t *testing.T) (*exercise.Service, *sqlite.Database) {
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
	return exercise.NewService(db, logger), db
}

func insertTestUser(ctx context.Context, t *testing.T, db *sqlite.Database, email string) int64 {
	t.Helper()
	result, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?)", email, []byte("hash"))
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get user ID: %v", err)
	}
	return id
}

func TestListFilters(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db, "lifter@example.com")

	cardio, err := svc.List(ctx, userID, exercise.Filter{Category: exercise.CategoryCardio})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(cardio) != 3 {
		t.Errorf("cardio exercises = %d, want 3", len(cardio))
	}
	for _, ex := range cardio {
		if ex.Category != exercise.CategoryCardio {
			t.Errorf("exercise %s category = %s", ex.Name, ex.Category)
		}
	}

	chest, err := svc.List(ctx, userID, exercise.Filter{MuscleGroup: "chest"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(chest) == 0 {
		t.Fatal("no chest exercises in fixtures")
	}
	for _, ex := range chest {
		found := false
		for _, muscle := range ex.MuscleGroups {
			if muscle == "chest" {
				found = true
			}
		}
		if !found {
			t.Errorf("exercise %s does not work the chest: %v", ex.Name, ex.MuscleGroups)
		}
	}

	advanced, err := svc.List(ctx, userID, exercise.Filter{Difficulty: exercise.DifficultyAdvanced})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(advanced) != 1 || advanced[0].Name != "Hanging Leg Raises" {
		t.Errorf("advanced exercises = %v, want Hanging Leg Raises only", advanced)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db, "lifter@example.com")
	otherID := insertTestUser(ctx, t, db, "other@example.com")

	created, err := svc.Create(ctx, userID, exercise.Exercise{
		Name:         "Goblet Squats",
		Category:     exercise.CategoryStrength,
		Difficulty:   exercise.DifficultyBeginner,
		MuscleGroups: []string{"quadriceps", "glutes"},
		Equipment:    []string{"kettlebell"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.CreatedBy == nil || *created.CreatedBy != userID {
		t.Errorf("CreatedBy = %v, want %d", created.CreatedBy, userID)
	}
	if created.IsTemplate {
		t.Error("custom exercise marked as template")
	}

	// Custom exercises are private to their creator.
	if _, err = svc.Get(ctx, otherID, created.ID); !errors.Is(err, exercise.ErrNotFound) {
		t.Errorf("Get() as other user error = %v, want ErrNotFound", err)
	}

	// Names must be unique across the whole catalog.
	if _, err = svc.Create(ctx, userID, exercise.Exercise{Name: "Squats"}); !errors.Is(err, exercise.ErrNameTaken) {
		t.Errorf("Create() duplicate error = %v, want ErrNameTaken", err)
	}

	created.Description = "Squat holding a kettlebell at chest height"
	updated, err := svc.Update(ctx, userID, created)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Description != created.Description {
		t.Errorf("Update() description = %q", updated.Description)
	}

	// Template exercises cannot be modified through the API.
	templates, err := svc.List(ctx, userID, exercise.Filter{MuscleGroup: "chest"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	template := templates[0]
	template.Description = "tampered"
	if _, err = svc.Update(ctx, userID, template); !errors.Is(err, exercise.ErrNotFound) {
		t.Errorf("Update() template error = %v, want ErrNotFound", err)
	}

	if err = svc.Delete(ctx, userID, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err = svc.Get(ctx, userID, created.ID); !errors.Is(err, exercise.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db, "lifter@example.com")

	if _, err := svc.Create(ctx, userID, exercise.Exercise{Name: "  "}); !errors.Is(err, exercise.ErrInvalidInput) {
		t.Errorf("Create() empty name error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Create(ctx, userID, exercise.Exercise{
		Name: "Yoga Flow", Category: "meditation",
	}); !errors.Is(err, exercise.ErrInvalidInput) {
		t.Errorf("Create() unknown category error = %v, want ErrInvalidInput", err)
	}

	// Category and difficulty default when omitted.
	created, err := svc.Create(ctx, userID, exercise.Exercise{Name: "Wall Sit"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Category != exercise.CategoryStrength || created.Difficulty != exercise.DifficultyBeginner {
		t.Errorf("defaults = %s/%s, want strength/beginner", created.Category, created.Difficulty)
	}
}

func TestRenderInstructions(t *testing.T) {
	html, err := exercise.RenderInstructions("Keep your **core** tight")
	if err != nil {
		t.Fatalf("RenderInstructions() error = %v", err)
	}
	if !strings.Contains(html, "<strong>core</strong>") {
		t.Errorf("RenderInstructions() = %q, want bold core", html)
	}
}
