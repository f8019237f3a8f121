package main

import (
	"net/http"

	"ironlog/internal/contexthelpers"
	"ironlog/internal/user"
)

// gymProfilesGET lists the user's gym profiles.
func (app *application) gymProfilesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	profiles, err := app.userService.GymProfiles(r.Context(), userID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profiles)
}

// gymProfileGET returns a single gym profile.
func (app *application) gymProfileGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	profile, err := app.userService.GymProfile(r.Context(), userID, profileID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

// gymProfileCreatePOST creates a gym profile.
func (app *application) gymProfileCreatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var profile user.GymProfile
	if !app.readJSON(w, r, &profile) {
		return
	}
	profile.ID = 0

	saved, err := app.userService.SaveGymProfile(r.Context(), userID, profile)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

// gymProfilePUT updates a gym profile.
func (app *application) gymProfilePUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	var profile user.GymProfile
	if !app.readJSON(w, r, &profile) {
		return
	}
	profile.ID = profileID

	saved, err := app.userService.SaveGymProfile(r.Context(), userID, profile)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, saved)
}

// gymProfileDELETE removes a gym profile.
func (app *application) gymProfileDELETE(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.userService.DeleteGymProfile(r.Context(), userID, profileID); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
