package main

import (
	"net/http"
	"time"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler, timeout time.Duration) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next, timeout)))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(base(next, defaultTimeout)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		// The exercise import pages through an external API and needs far
		// more time than a regular request.
		mustSessionSlow = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(base(app.mustAuthenticate(next), importTimeout)))))
		}
	)

	mux.Handle("POST /api/register", session(http.HandlerFunc(app.registerPOST)))
	mux.Handle("POST /api/login", session(http.HandlerFunc(app.loginPOST)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /api/me", mustSession(http.HandlerFunc(app.meGET)))

	mux.Handle("GET /api/profile", mustSession(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", mustSession(http.HandlerFunc(app.profilePUT)))

	mux.Handle("GET /api/gym-profiles", mustSession(http.HandlerFunc(app.gymProfilesGET)))
	mux.Handle("POST /api/gym-profiles", mustSession(http.HandlerFunc(app.gymProfileCreatePOST)))
	mux.Handle("GET /api/gym-profiles/{id}", mustSession(http.HandlerFunc(app.gymProfileGET)))
	mux.Handle("PUT /api/gym-profiles/{id}", mustSession(http.HandlerFunc(app.gymProfilePUT)))
	mux.Handle("DELETE /api/gym-profiles/{id}", mustSession(http.HandlerFunc(app.gymProfileDELETE)))

	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("POST /api/exercises", mustSession(http.HandlerFunc(app.exerciseCreatePOST)))
	mux.Handle("GET /api/exercises/{id}", mustSession(http.HandlerFunc(app.exerciseGET)))
	mux.Handle("PUT /api/exercises/{id}", mustSession(http.HandlerFunc(app.exercisePUT)))
	mux.Handle("DELETE /api/exercises/{id}", mustSession(http.HandlerFunc(app.exerciseDELETE)))
	mux.Handle("POST /api/exercises/import", mustSessionSlow(http.HandlerFunc(app.exerciseImportPOST)))

	mux.Handle("GET /api/workout-logs", mustSession(http.HandlerFunc(app.workoutLogsGET)))
	mux.Handle("POST /api/workout-logs", mustSession(http.HandlerFunc(app.workoutLogCreatePOST)))
	mux.Handle("GET /api/workout-logs/{id}", mustSession(http.HandlerFunc(app.workoutLogGET)))
	mux.Handle("PUT /api/workout-logs/{id}", mustSession(http.HandlerFunc(app.workoutLogPUT)))
	mux.Handle("DELETE /api/workout-logs/{id}", mustSession(http.HandlerFunc(app.workoutLogDELETE)))
	mux.Handle("GET /api/stats", mustSession(http.HandlerFunc(app.statsGET)))

	mux.Handle("GET /api/dashboard/weekly-streak", mustSession(http.HandlerFunc(app.weeklyStreakGET)))
	mux.Handle("GET /api/dashboard/current-streak", mustSession(http.HandlerFunc(app.currentStreakGET)))
	mux.Handle("GET /api/dashboard/week-comparison", mustSession(http.HandlerFunc(app.weekComparisonGET)))
	mux.Handle("GET /api/dashboard/frequency-chart", mustSession(http.HandlerFunc(app.frequencyChartGET)))

	mux.Handle("POST /api/trainer/generate-program", mustSession(http.HandlerFunc(app.generateProgramPOST)))
	mux.Handle("GET /api/trainer/programs", mustSession(http.HandlerFunc(app.programsGET)))
	mux.Handle("GET /api/trainer/programs/{id}", mustSession(http.HandlerFunc(app.programGET)))
	mux.Handle("DELETE /api/trainer/programs/{id}", mustSession(http.HandlerFunc(app.programDELETE)))
	mux.Handle("POST /api/trainer/programs/{id}/accept", mustSession(http.HandlerFunc(app.programAcceptPOST)))
	mux.Handle("POST /api/trainer/programs/{id}/archive", mustSession(http.HandlerFunc(app.programArchivePOST)))
	mux.Handle("POST /api/trainer/programs/{id}/complete", mustSession(http.HandlerFunc(app.programCompletePOST)))
	mux.Handle("GET /api/trainer/active-program", mustSession(http.HandlerFunc(app.activeProgramGET)))
	mux.Handle("GET /api/trainer/daily-workout", mustSession(http.HandlerFunc(app.dailyWorkoutGET)))
	mux.Handle("POST /api/trainer/insights/generate", mustSession(http.HandlerFunc(app.insightsGeneratePOST)))
	mux.Handle("GET /api/trainer/insights", mustSession(http.HandlerFunc(app.insightsGET)))
	mux.Handle("POST /api/trainer/insights/{id}/apply", mustSession(http.HandlerFunc(app.insightApplyPOST)))
	mux.Handle("POST /api/trainer/suggest-workout", mustSession(http.HandlerFunc(app.suggestWorkoutPOST)))

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	return mux
}
