package main

import (
	"net/http"

	"ironlog/internal/contexthelpers"
	"ironlog/internal/user"
)

// profileGET returns the fitness profile of the signed-in user.
func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	u, err := app.userService.Get(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, u.Profile)
}

// profilePUT overwrites the fitness profile of the signed-in user.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var profile user.Profile
	if !app.readJSON(w, r, &profile) {
		return
	}
	if err := app.userService.UpdateProfile(r.Context(), userID, profile); err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}
