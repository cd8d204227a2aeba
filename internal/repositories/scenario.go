package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.NewSentinel("not found")

type ScenarioRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewScenarioRepository(dbs *db.Database, logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{
		dbs:    dbs,
		logger: logger.With("source", "ScenarioRepository"),
	}
}

// Get fetches one scenario. The engine only ever reads scenarios; authoring and
// moderation happen elsewhere.
func (r *ScenarioRepository) Get(ctx context.Context, scenIdx int64) (*models.Scenario, error) {
	var scenario models.Scenario
	stmt := `SELECT scen_idx, title, summary, content_json, status, created_at
	FROM scenarios WHERE scen_idx = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &scenario, stmt, scenIdx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "scenario not found", slog.Int64("scen_idx", scenIdx))
		}
		return nil, errors.Wrap(err, "read scenario")
	}
	return &scenario, nil
}

// Insert stores a new scenario and returns its id. Used by the seeding CLI.
func (r *ScenarioRepository) Insert(ctx context.Context, title, summary, contentJSON string) (int64, error) {
	stmt := `INSERT INTO scenarios (title, summary, content_json) VALUES (?, ?, ?)`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, title, summary, contentJSON)
	if err != nil {
		return 0, errors.Wrap(err, "insert scenario")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "scenario insert id")
	}
	return id, nil
}
