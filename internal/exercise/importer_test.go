package exercise_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ironlog/internal/exercise"
	"ironlog/internal/testhelpers"
)

const wgerPageJSON = `{
	"count": 3,
	"results": [
		{
			"category": {"name": "Legs"},
			"muscles": [{"name": "Quadriceps femoris", "name_en": ""}],
			"muscles_secondary": [{"name": "Gluteus maximus", "name_en": ""}],
			"equipment": [{"name": "Barbell"}],
			"translations": [
				{"language": 1, "name": "Kniebeuge am Rack", "description": ""},
				{"language": 2, "name": "Box Squats", "description": "<p>Sit back onto the&nbsp;box.</p>"}
			]
		},
		{
			"category": {"name": "Legs"},
			"muscles": [],
			"muscles_secondary": [],
			"equipment": [{"name": "Barbell"}],
			"translations": [
				{"language": 2, "name": "Squats", "description": "Duplicate of a fixture exercise"}
			]
		},
		{
			"category": {"name": "Legs"},
			"muscles": [],
			"muscles_secondary": [],
			"equipment": [],
			"translations": [
				{"language": 1, "name": "Nur Deutsch", "description": ""}
			]
		}
	]
}`

func TestImporterRun(t *testing.T) {
	ctx := t.Context()
	svc, db := newTestService(t)
	userID := insertTestUser(ctx, t, db, "lifter@example.com")

	wger := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exerciseinfo/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(wgerPageJSON))
	}))
	t.Cleanup(wger.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	importer := exercise.NewImporter(svc, wger.URL, logger)

	report, err := importer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Box Squats is new. Squats already exists in the fixtures and the
	// German-only entry has no usable English name.
	if report.Imported != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v, want 1 imported, 2 skipped", report)
	}

	imported, err := svc.List(ctx, userID, exercise.Filter{MuscleGroup: "quadriceps"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var boxSquats exercise.Exercise
	for _, ex := range imported {
		if ex.Name == "Box Squats" {
			boxSquats = ex
		}
	}
	if boxSquats.ID == 0 {
		t.Fatal("Box Squats was not imported")
	}
	if !boxSquats.IsTemplate {
		t.Error("imported exercise is not a template")
	}
	// HTML is stripped and non-breaking spaces normalized.
	if boxSquats.Description != "Sit back onto the box." {
		t.Errorf("Description = %q", boxSquats.Description)
	}
	// Barbell work is estimated as intermediate.
	if boxSquats.Difficulty != exercise.DifficultyIntermediate {
		t.Errorf("Difficulty = %s, want intermediate", boxSquats.Difficulty)
	}
	if len(boxSquats.Equipment) != 1 || boxSquats.Equipment[0] != "barbell" {
		t.Errorf("Equipment = %v, want [barbell]", boxSquats.Equipment)
	}

	// A second run imports nothing new.
	report, err = importer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Imported != 0 {
		t.Errorf("second run imported = %d, want 0", report.Imported)
	}
}
