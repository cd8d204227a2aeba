package main

import (
	"net/http"

	"github.com/mlahtinen/gumshoe/internal/game"
	"github.com/mlahtinen/gumshoe/internal/models"
)

// finishGame closes a session with the player's final accusation, grades it and
// returns the stored result. Provider outages never fail the request.
func (app *application) finishGame(w http.ResponseWriter, r *http.Request) {
	var req game.FinishRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	session, ok := app.loadOwnedSession(w, r, req.SessionID)
	if !ok {
		return
	}
	if session.Status != models.SessionPlaying {
		app.clientError(w, r, http.StatusConflict)
		return
	}

	resultID, err := app.service.Finish(r.Context(), req)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	result, err := app.results.Get(r.Context(), resultID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, resultPayload(result))
}
