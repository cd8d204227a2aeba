package main

import (
	"net/http"

	"github.com/mlahtinen/gumshoe/internal/models"
)

type appendLogRequest struct {
	SessionID int64             `json:"sessionId" validate:"required,gt=0"`
	Logs      []models.LogEntry `json:"logs" validate:"required,min=1,dive"`
}

// appendLog adds chat lines to a running session's log.
func (app *application) appendLog(w http.ResponseWriter, r *http.Request) {
	var req appendLogRequest
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

	if err := app.sessions.AppendLog(r.Context(), req.SessionID, req.Logs...); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"sessionId": req.SessionID, "appended": len(req.Logs)})
}
