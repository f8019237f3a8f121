package main

import (
	"net/http"

	"ironlog/internal/contexthelpers"
	"ironlog/internal/exercise"
)

// exerciseDetail is an exercise plus its instructions rendered to HTML.
type exerciseDetail struct {
	exercise.Exercise
	InstructionsHTML string `json:"instructions_html,omitempty"`
}

// exercisesGET lists the visible exercise catalog with optional filters.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	query := r.URL.Query()

	filter := exercise.Filter{
		Category:    exercise.Category(query.Get("category")),
		Difficulty:  exercise.Difficulty(query.Get("difficulty")),
		MuscleGroup: query.Get("muscle_group"),
	}
	exercises, err := app.exerciseService.List(r.Context(), userID, filter)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

// exerciseGET returns a single exercise with rendered instructions.
func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	exerciseID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	ex, err := app.exerciseService.Get(r.Context(), userID, exerciseID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	html, err := exercise.RenderInstructions(ex.Instructions)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exerciseDetail{Exercise: ex, InstructionsHTML: html})
}

// exerciseCreatePOST creates a custom exercise owned by the user.
func (app *application) exerciseCreatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var ex exercise.Exercise
	if !app.readJSON(w, r, &ex) {
		return
	}
	created, err := app.exerciseService.Create(r.Context(), userID, ex)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, created)
}

// exercisePUT updates a custom exercise owned by the user.
func (app *application) exercisePUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	exerciseID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	var ex exercise.Exercise
	if !app.readJSON(w, r, &ex) {
		return
	}
	ex.ID = exerciseID

	updated, err := app.exerciseService.Update(r.Context(), userID, ex)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, updated)
}

// exerciseDELETE removes a custom exercise owned by the user.
func (app *application) exerciseDELETE(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	exerciseID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.exerciseService.Delete(r.Context(), userID, exerciseID); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exerciseImportPOST imports the wger exercise database into the template
// catalog. Exercises already present are skipped.
func (app *application) exerciseImportPOST(w http.ResponseWriter, r *http.Request) {
	report, err := app.importer.Run(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, report)
}
