package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave)

	mux.Handle("GET /api/healthy", session.ThenFunc(app.healthy))

	mux.Handle("POST /api/game/session/start", session.ThenFunc(app.startSession))
	mux.Handle("POST /api/game/log", session.ThenFunc(app.appendLog))
	mux.Handle("POST /api/game/result", session.ThenFunc(app.finishGame))

	mux.Handle("GET /api/game-results", session.ThenFunc(app.listMyResults))
	mux.Handle("GET /api/game-results/{id}", session.ThenFunc(app.getResult))
	mux.Handle("GET /api/game-results/{id}/similarity", session.ThenFunc(app.getSimilarity))
	mux.Handle("GET /api/game-results/session/{sessionID}", session.ThenFunc(app.getResultBySession))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
