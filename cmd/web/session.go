package main

import (
	"database/sql"
	"net/http"

	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/mlahtinen/gumshoe/internal/random"
	"github.com/mlahtinen/gumshoe/internal/repositories"
)

// playerIDSessionKey stores the player identity in the browser session. Guests
// get a generated identity on their first game so that they keep access to
// their own sessions and results without registering.
const playerIDSessionKey = "playerID"

func (app *application) currentPlayerID(r *http.Request) string {
	return app.sessionManager.GetString(r.Context(), playerIDSessionKey)
}

// resolvePlayerID picks the player identity for a new game session: an explicit
// id from the request, the identity already in the browser session, or a fresh
// guest identity. Whichever wins is remembered in the browser session.
func (app *application) resolvePlayerID(r *http.Request, requested string) (string, error) {
	playerID := requested
	if playerID == "" {
		playerID = app.currentPlayerID(r)
	}
	if playerID == "" {
		generated, err := random.Letters(20)
		if err != nil {
			return "", errors.Wrap(err, "generate guest player id")
		}
		playerID = "guest-" + generated
	}
	app.sessionManager.Put(r.Context(), playerIDSessionKey, playerID)
	return playerID, nil
}

// mayAccess reports whether the current browser session may touch a game
// session or result owned by owner. Ownerless rows are open to everyone.
func (app *application) mayAccess(r *http.Request, owner sql.NullString) bool {
	if !owner.Valid || owner.String == "" {
		return true
	}
	return owner.String == app.currentPlayerID(r)
}

func (app *application) loadOwnedSession(w http.ResponseWriter, r *http.Request, sessionID int64) (*models.GameSession, bool) {
	session, err := app.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
		} else {
			app.serverError(w, r, err)
		}
		return nil, false
	}
	if !app.mayAccess(r, session.PlayerID) {
		app.clientError(w, r, http.StatusForbidden)
		return nil, false
	}
	return session, true
}
