package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/mlahtinen/gumshoe/internal/repositories"
)

type resultResponse struct {
	ResultID  int64          `json:"resultId"`
	SessionID int64          `json:"sessionId"`
	ScenIdx   int64          `json:"scenIdx"`
	PlayerID  string         `json:"playerId,omitempty"`
	Answer    map[string]any `json:"answer"`
	Skills    map[string]any `json:"skills"`
	IsCorrect bool           `json:"isCorrect"`
	CreatedAt time.Time      `json:"createdAt"`
}

// resultPayload flattens a stored result into the response shape. The persisted
// JSON columns are stored verbatim, so a decode failure here is a server bug
// and surfaces as a null field rather than an error.
func resultPayload(result *models.GameResult) resultResponse {
	var answer, skills map[string]any
	_ = json.Unmarshal([]byte(result.AnswerJSON), &answer)
	_ = json.Unmarshal([]byte(result.SkillsJSON), &skills)

	return resultResponse{
		ResultID:  result.ResultID,
		SessionID: result.SessionID,
		ScenIdx:   result.ScenIdx,
		PlayerID:  result.PlayerID.String,
		Answer:    answer,
		Skills:    skills,
		IsCorrect: result.IsCorrect,
		CreatedAt: result.CreatedAt,
	}
}

func (app *application) loadOwnedResult(w http.ResponseWriter, r *http.Request, load func() (*models.GameResult, error)) (*models.GameResult, bool) {
	result, err := load()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
		} else {
			app.serverError(w, r, err)
		}
		return nil, false
	}
	if !app.mayAccess(r, result.PlayerID) {
		app.clientError(w, r, http.StatusForbidden)
		return nil, false
	}
	return result, true
}

// getResult returns a stored result by its id.
func (app *application) getResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	result, ok := app.loadOwnedResult(w, r, func() (*models.GameResult, error) {
		return app.results.Get(r.Context(), resultID)
	})
	if !ok {
		return
	}

	app.writeJSON(w, r, http.StatusOK, resultPayload(result))
}

// getResultBySession returns the latest result for a session.
func (app *application) getResultBySession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("sessionID"), 10, 64)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	result, ok := app.loadOwnedResult(w, r, func() (*models.GameResult, error) {
		return app.results.GetBySession(r.Context(), sessionID)
	})
	if !ok {
		return
	}

	app.writeJSON(w, r, http.StatusOK, resultPayload(result))
}

// listMyResults returns the current player's results, newest first. A browser
// session without a player identity has no results yet.
func (app *application) listMyResults(w http.ResponseWriter, r *http.Request) {
	payload := []resultResponse{}
	if playerID := app.currentPlayerID(r); playerID != "" {
		results, err := app.results.ListByPlayer(r.Context(), playerID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		for i := range results {
			payload = append(payload, resultPayload(&results[i]))
		}
	}
	app.writeJSON(w, r, http.StatusOK, payload)
}

// getSimilarity recomputes the similarity report for a stored result. The
// optional threshold query parameter overrides the configured report default.
func (app *application) getSimilarity(w http.ResponseWriter, r *http.Request) {
	resultID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	threshold := app.service.ReportThreshold()
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if threshold, err = strconv.ParseFloat(raw, 64); err != nil || threshold < 0 || threshold > 1 {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
	}

	result, ok := app.loadOwnedResult(w, r, func() (*models.GameResult, error) {
		return app.results.Get(r.Context(), resultID)
	})
	if !ok {
		return
	}

	report, err := app.service.Report(r.Context(), result, threshold)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, report)
}
