package main

import (
	"net/http"
	"time"

	"ironlog/internal/contexthelpers"
	"ironlog/internal/workoutlog"
)

// workoutLogsGET lists the user's workout logs, newest first. An optional
// since=YYYY-MM-DD query parameter narrows the range.
func (app *application) workoutLogsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var since time.Time
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		if since, err = time.Parse(time.DateOnly, sinceStr); err != nil {
			app.clientError(w, r, http.StatusBadRequest, "since must be formatted as YYYY-MM-DD")
			return
		}
	}

	logs, err := app.logService.List(r.Context(), userID, since)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, logs)
}

// workoutLogGET returns a single workout log.
func (app *application) workoutLogGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	logID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	log, err := app.logService.Get(r.Context(), userID, logID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, log)
}

// workoutLogCreatePOST records a completed workout.
func (app *application) workoutLogCreatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var log workoutlog.Log
	if !app.readJSON(w, r, &log) {
		return
	}
	created, err := app.logService.Create(r.Context(), userID, log)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, created)
}

// workoutLogPUT updates a workout log.
func (app *application) workoutLogPUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	logID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	var log workoutlog.Log
	if !app.readJSON(w, r, &log) {
		return
	}
	log.ID = logID

	updated, err := app.logService.Update(r.Context(), userID, log)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, updated)
}

// workoutLogDELETE removes a workout log.
func (app *application) workoutLogDELETE(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	logID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.logService.Delete(r.Context(), userID, logID); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statsGET returns aggregate workout statistics.
func (app *application) statsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	stats, err := app.logService.Stats(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, stats)
}
