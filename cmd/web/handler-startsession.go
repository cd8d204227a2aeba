package main

import (
	"net/http"

	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/repositories"
)

type startSessionRequest struct {
	ScenIdx  int64  `json:"scenIdx" validate:"required,gt=0"`
	PlayerID string `json:"playerId,omitempty"`
}

type startSessionResponse struct {
	SessionID int64  `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

// startSession opens a new playthrough of a published scenario.
func (app *application) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	if _, err := app.scenarios.Get(r.Context(), req.ScenIdx); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
		} else {
			app.serverError(w, r, err)
		}
		return
	}

	playerID, err := app.resolvePlayerID(r, req.PlayerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	sessionID, err := app.sessions.Start(r.Context(), req.ScenIdx, playerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, startSessionResponse{
		SessionID: sessionID,
		PlayerID:  playerID,
	})
}
