package main

import (
	"context"
	"net/http"

	"ironlog/internal/contexthelpers"
	"ironlog/internal/trainer"
)

// generateProgramPOST generates a draft training program.
func (app *application) generateProgramPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req trainer.ProgramRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	result, err := app.trainerService.Generate(r.Context(), userID, req)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, result)
}

// programsGET lists the user's programs, optionally filtered by status.
func (app *application) programsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	status := trainer.ProgramStatus(r.URL.Query().Get("status"))

	programs, err := app.trainerService.Programs(r.Context(), userID, status)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, programs)
}

// programGET returns a program with its full workout tree.
func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	programID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	program, err := app.trainerService.Program(r.Context(), userID, programID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, program)
}

// programDELETE removes a program.
func (app *application) programDELETE(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	programID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.trainerService.DeleteProgram(r.Context(), userID, programID); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// programAcceptPOST activates a draft program.
func (app *application) programAcceptPOST(w http.ResponseWriter, r *http.Request) {
	app.transitionProgram(w, r, app.trainerService.Accept)
}

// programArchivePOST archives an active program.
func (app *application) programArchivePOST(w http.ResponseWriter, r *http.Request) {
	app.transitionProgram(w, r, app.trainerService.Archive)
}

// programCompletePOST marks an active program as completed.
func (app *application) programCompletePOST(w http.ResponseWriter, r *http.Request) {
	app.transitionProgram(w, r, app.trainerService.Complete)
}

func (app *application) transitionProgram(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, userID, programID int64) error,
) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	programID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := transition(r.Context(), userID, programID); err != nil {
		app.serviceError(w, r, err)
		return
	}
	program, err := app.trainerService.Program(r.Context(), userID, programID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, program)
}

// activeProgramGET returns the user's active program.
func (app *application) activeProgramGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	program, err := app.trainerService.ActiveProgram(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, program)
}

// dailyWorkoutGET returns today's workout from the active program.
func (app *application) dailyWorkoutGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	workout, err := app.trainerService.TodaysWorkout(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, workout)
}

// insightsGeneratePOST analyzes recent history and persists new insights.
func (app *application) insightsGeneratePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	insights, err := app.trainerService.GenerateInsights(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if insights == nil {
		insights = []trainer.Insight{}
	}
	app.writeJSON(w, r, http.StatusOK, insights)
}

// insightsGET lists the newest insights.
func (app *application) insightsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	insights, err := app.trainerService.Insights(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if insights == nil {
		insights = []trainer.Insight{}
	}
	app.writeJSON(w, r, http.StatusOK, insights)
}

type insightApplyRequest struct {
	Applied *bool `json:"applied"`
}

// insightApplyPOST toggles the applied flag of an insight. Without a body
// the insight is marked applied.
func (app *application) insightApplyPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	insightID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	applied := true
	if r.ContentLength > 0 {
		var req insightApplyRequest
		if !app.readJSON(w, r, &req) {
			return
		}
		if req.Applied != nil {
			applied = *req.Applied
		}
	}

	if err := app.trainerService.SetInsightApplied(r.Context(), userID, insightID, applied); err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]bool{"applied": applied})
}

// suggestWorkoutPOST returns a quick workout suggestion outside any program.
func (app *application) suggestWorkoutPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req trainer.SuggestionRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	suggestion, err := app.trainerService.Suggest(r.Context(), userID, req)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, suggestion)
}
