package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
)

type SessionRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewSessionRepository(dbs *db.Database, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		dbs:    dbs,
		logger: logger.With("source", "SessionRepository"),
	}
}

// Start opens a new playthrough of the scenario. playerID may be empty for
// guest play.
func (r *SessionRepository) Start(ctx context.Context, scenIdx int64, playerID string) (int64, error) {
	stmt := `INSERT INTO game_sessions (scen_idx, player_id) VALUES (?, ?)`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, scenIdx, nullString(playerID))
	if err != nil {
		return 0, errors.Wrap(err, "insert session", slog.Int64("scen_idx", scenIdx))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "session insert id")
	}
	return id, nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID int64) (*models.GameSession, error) {
	var session models.GameSession
	stmt := `SELECT session_id, scen_idx, player_id, log_json, status, started_at, finished_at
	FROM game_sessions WHERE session_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &session, stmt, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "session not found", slog.Int64("session_id", sessionID))
		}
		return nil, errors.Wrap(err, "read session")
	}
	return &session, nil
}

// Log decodes the session chat log. A corrupt log column degrades to an empty
// log so that the finish flow is never blocked by bad history.
func (r *SessionRepository) Log(ctx context.Context, sessionID int64) (models.SessionLog, error) {
	session, err := r.Get(ctx, sessionID)
	if err != nil {
		return models.SessionLog{}, err
	}
	var log models.SessionLog
	if err = json.Unmarshal([]byte(session.LogJSON), &log); err != nil {
		r.logger.WarnContext(ctx, "malformed session log, substituting empty log",
			slog.Int64("session_id", sessionID), errors.SlogError(err))
		return models.SessionLog{Logs: []models.LogEntry{}}, nil
	}
	return log, nil
}

// AppendLog adds entries to the session chat log. The read-modify-write cycle
// is safe because all writes go through the single-connection pool.
func (r *SessionRepository) AppendLog(ctx context.Context, sessionID int64, entries ...models.LogEntry) error {
	log, err := r.Log(ctx, sessionID)
	if err != nil {
		return err
	}
	log.Logs = append(log.Logs, entries...)
	payload, err := json.Marshal(log)
	if err != nil {
		return errors.Wrap(err, "marshal session log")
	}
	stmt := `UPDATE game_sessions SET log_json = ? WHERE session_id = ?`
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, string(payload), sessionID); err != nil {
		return errors.Wrap(err, "update session log", slog.Int64("session_id", sessionID))
	}
	return nil
}

// Finish marks the session as finished.
func (r *SessionRepository) Finish(ctx context.Context, sessionID int64) error {
	stmt := `UPDATE game_sessions
	SET status = ?, finished_at = CURRENT_TIMESTAMP
	WHERE session_id = ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, models.SessionFinished, sessionID); err != nil {
		return errors.Wrap(err, "finish session", slog.Int64("session_id", sessionID))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
