package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/mlahtinen/gumshoe/internal/repositories"
	"github.com/mlahtinen/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioRepository(t *testing.T) {
	dbs := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	repo := repositories.NewScenarioRepository(dbs, logger)
	ctx := context.Background()

	scenario, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "저택의 밤", scenario.Title)

	content, err := models.ParseCaseContent(scenario.ContentJSON)
	require.NoError(t, err)
	assert.Equal(t, "c1", content.Truth().CulpritID)

	_, err = repo.Get(ctx, 999)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	id, err := repo.Insert(ctx, "새 사건", "요약", `{"characters":[]}`)
	require.NoError(t, err)
	inserted, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "새 사건", inserted.Title)
}

func TestSessionRepository(t *testing.T) {
	dbs := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	repo := repositories.NewSessionRepository(dbs, logger)
	ctx := context.Background()

	t.Run("start and get", func(t *testing.T) {
		id, err := repo.Start(ctx, 1, "player-xyz")
		require.NoError(t, err)

		session, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), session.ScenIdx)
		assert.Equal(t, "player-xyz", session.PlayerID.String)
		assert.Equal(t, models.SessionPlaying, session.Status)
	})

	t.Run("guest session has null player", func(t *testing.T) {
		id, err := repo.Start(ctx, 1, "")
		require.NoError(t, err)
		session, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, session.PlayerID.Valid)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.Get(ctx, 999)
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("log round trip", func(t *testing.T) {
		log, err := repo.Log(ctx, 1)
		require.NoError(t, err)
		require.Len(t, log.Logs, 2)
		assert.Equal(t, models.SpeakerPlayer, log.Logs[0].Speaker)

		err = repo.AppendLog(ctx, 1,
			models.LogEntry{Speaker: models.SpeakerPlayer, Message: "지갑은 어디 있었나요?", Suspect: "김민준"},
			models.LogEntry{Speaker: "SUSPECT", Message: "모릅니다.", Suspect: "김민준"},
		)
		require.NoError(t, err)

		log, err = repo.Log(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, log.Logs, 4)
	})

	t.Run("malformed log degrades to empty", func(t *testing.T) {
		log, err := repo.Log(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, log.Logs)
	})

	t.Run("finish", func(t *testing.T) {
		require.NoError(t, repo.Finish(ctx, 2))
		session, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, models.SessionFinished, session.Status)
		assert.True(t, session.FinishedAt.Valid)
	})
}

func TestResultRepository(t *testing.T) {
	dbs := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	repo := repositories.NewResultRepository(dbs, logger)
	ctx := context.Background()

	t.Run("get fixture", func(t *testing.T) {
		result, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
		assert.Equal(t, "player-abc", result.PlayerID.String)
	})

	t.Run("missing result", func(t *testing.T) {
		_, err := repo.Get(ctx, 999)
		require.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repo.GetBySession(ctx, 999)
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("save and fetch by session", func(t *testing.T) {
		id, err := repo.Save(ctx, models.GameResult{
			SessionID:  2,
			ScenIdx:    1,
			AnswerJSON: `{"culprit":"c2"}`,
			SkillsJSON: `{"logic":10,"creativity":10,"focus":10,"diversity":10,"depth":10}`,
			IsCorrect:  false,
		})
		require.NoError(t, err)

		bySession, err := repo.GetBySession(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, id, bySession.ResultID)
		assert.False(t, bySession.IsCorrect)
	})

	t.Run("latest result wins for session", func(t *testing.T) {
		first, err := repo.Save(ctx, models.GameResult{SessionID: 1, ScenIdx: 1, AnswerJSON: "{}", SkillsJSON: "{}"})
		require.NoError(t, err)
		second, err := repo.Save(ctx, models.GameResult{SessionID: 1, ScenIdx: 1, AnswerJSON: "{}", SkillsJSON: "{}"})
		require.NoError(t, err)
		require.Greater(t, second, first)

		bySession, err := repo.GetBySession(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, second, bySession.ResultID)
	})

	t.Run("list by player", func(t *testing.T) {
		results, err := repo.ListByPlayer(ctx, "player-abc")
		require.NoError(t, err)
		require.NotEmpty(t, results)
		// Newest first.
		for i := 1; i < len(results); i++ {
			assert.Greater(t, results[i-1].ResultID, results[i].ResultID)
		}
	})
}
