package main

import (
	"net/http"

	"ironlog/internal/contexthelpers"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// registerPOST creates an account and signs the user in.
func (app *application) registerPOST(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	u, err := app.userService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	// Renew the session token on privilege change to prevent session fixation.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, u.ID)

	app.writeJSON(w, r, http.StatusCreated, userResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}

// loginPOST authenticates with email and password.
func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	u, err := app.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, u.ID)

	app.writeJSON(w, r, http.StatusOK, userResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}

// logoutPOST destroys the session.
func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

// meGET returns the signed-in user.
func (app *application) meGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	u, err := app.userService.Get(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, userResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}
