package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"ironlog/internal/errors"
	"ironlog/internal/exercise"
	"ironlog/internal/trainer"
	"ironlog/internal/user"
	"ironlog/internal/workoutlog"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", slog.Any("error", err))
	}
}

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

// serviceError maps the well-known service sentinels to HTTP statuses and
// treats everything else as a server error.
func (app *application) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, exercise.ErrNotFound),
		errors.Is(err, workoutlog.ErrNotFound),
		errors.Is(err, trainer.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, exercise.ErrNameTaken):
		app.clientError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, trainer.ErrInvalidTransition):
		app.clientError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		app.clientError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrWeakPassword),
		errors.Is(err, user.ErrInvalidLevel),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, exercise.ErrInvalidInput),
		errors.Is(err, workoutlog.ErrInvalidInput),
		errors.Is(err, trainer.ErrInvalidInput):
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, trainer.ErrNoExercises):
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// parseIDParam parses the "id" path parameter from the request URL. On
// failure it sends an HTTP 404 response and returns false.
func (app *application) parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
