package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
)

type ResultRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewResultRepository(dbs *db.Database, logger *slog.Logger) *ResultRepository {
	return &ResultRepository{
		dbs:    dbs,
		logger: logger.With("source", "ResultRepository"),
	}
}

// Save persists the finished-session outcome as a single write and returns the
// generated result id. Rows are never updated afterwards; the grade is a
// point-in-time record.
func (r *ResultRepository) Save(ctx context.Context, result models.GameResult) (int64, error) {
	stmt := `INSERT INTO game_results (session_id, scen_idx, player_id, answer_json, skills_json, is_correct)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt,
		result.SessionID, result.ScenIdx, result.PlayerID,
		result.AnswerJSON, result.SkillsJSON, result.IsCorrect)
	if err != nil {
		return 0, errors.Wrap(err, "insert result", slog.Int64("session_id", result.SessionID))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "result insert id")
	}
	return id, nil
}

func (r *ResultRepository) Get(ctx context.Context, resultID int64) (*models.GameResult, error) {
	var result models.GameResult
	stmt := `SELECT result_id, session_id, scen_idx, player_id, answer_json, skills_json, is_correct, created_at
	FROM game_results WHERE result_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &result, stmt, resultID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "result not found", slog.Int64("result_id", resultID))
		}
		return nil, errors.Wrap(err, "read result")
	}
	return &result, nil
}

// GetBySession fetches the latest result for a session.
func (r *ResultRepository) GetBySession(ctx context.Context, sessionID int64) (*models.GameResult, error) {
	var result models.GameResult
	stmt := `SELECT result_id, session_id, scen_idx, player_id, answer_json, skills_json, is_correct, created_at
	FROM game_results WHERE session_id = ? ORDER BY result_id DESC LIMIT 1`
	if err := r.dbs.ReadOnly.GetContext(ctx, &result, stmt, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "result not found", slog.Int64("session_id", sessionID))
		}
		return nil, errors.Wrap(err, "read result by session")
	}
	return &result, nil
}

// ListByPlayer fetches all results recorded for a player, newest first.
func (r *ResultRepository) ListByPlayer(ctx context.Context, playerID string) ([]models.GameResult, error) {
	var results []models.GameResult
	stmt := `SELECT result_id, session_id, scen_idx, player_id, answer_json, skills_json, is_correct, created_at
	FROM game_results WHERE player_id = ? ORDER BY result_id DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &results, stmt, playerID); err != nil {
		return nil, errors.Wrap(err, "list results by player")
	}
	return results, nil
}
