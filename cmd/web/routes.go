package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServer(http.Dir(app.images.Dir()))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads", cacheForeverHeaders(fileServer)))

	session := alice.New(app.sessionManager.LoadAndSave, app.authenticate)

	mux.Handle("POST /api/auth/signup", session.ThenFunc(app.signup))
	mux.Handle("POST /api/auth/login", session.ThenFunc(app.login))
	mux.Handle("POST /api/auth/logout", session.ThenFunc(app.logout))

	mux.Handle("POST /api/report", session.ThenFunc(app.submitReport))
	mux.Handle("POST /api/cleanup", session.ThenFunc(app.submitCleanup))
	mux.Handle("POST /api/reports/verify", session.ThenFunc(app.verifyReport))

	mux.Handle("GET /api/reports/pending", session.ThenFunc(app.pendingReports))
	mux.Handle("GET /api/reports/completed", session.ThenFunc(app.completedReports))
	mux.Handle("GET /api/reports/verified", session.ThenFunc(app.verifiedReports))
	mux.Handle("GET /api/reports/recent", session.ThenFunc(app.recentReports))
	mux.Handle("GET /api/analytics", session.ThenFunc(app.analytics))

	mux.Handle("GET /api/health", http.HandlerFunc(app.healthy))

	return app.recoverPanic(app.logRequest(secureHeaders(noSurf(mux))))
}
