package main

import (
	"net/http"
	"strconv"
	"time"

	"ironlog/internal/contexthelpers"
)

// weeklyStreakGET shows which days of the current week had workouts.
func (app *application) weeklyStreakGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	streak, err := app.logService.WeeklyStreak(r.Context(), userID, time.Now())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, streak)
}

// currentStreakGET returns the current and longest consecutive-day streaks.
func (app *application) currentStreakGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	streak, err := app.logService.CurrentStreak(r.Context(), userID, time.Now())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, streak)
}

// weekComparisonGET compares this week's training against the previous week.
func (app *application) weekComparisonGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	comparison, err := app.logService.WeekComparison(r.Context(), userID, time.Now())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, comparison)
}

// frequencyChartGET returns per-week workout counts with a trend. The weeks
// query parameter selects the window, defaulting to twelve weeks.
func (app *application) frequencyChartGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	weeks := 0
	if weeksStr := r.URL.Query().Get("weeks"); weeksStr != "" {
		var err error
		if weeks, err = strconv.Atoi(weeksStr); err != nil {
			app.clientError(w, r, http.StatusBadRequest, "weeks must be an integer")
			return
		}
	}

	chart, err := app.logService.FrequencyChart(r.Context(), userID, weeks, time.Now())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, chart)
}
