package models_test

import (
	"testing"

	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContentJSON = `{
  "scenario": {"title": "저택의 밤", "summary": "폭풍우 치는 밤의 살인"},
  "characters": [
    {"role": "용의자", "id": "c2", "name": "박서연", "alibi": "서재에 있었다"},
    {"role": "범인", "id": "c1", "name": "김민준", "alibi": "정원에 있었다"}
  ],
  "evidence": [
    {"id": "e1", "name": "지갑", "desc": "피해자의 빈 지갑"},
    {"id": "e2", "name": "통화기록", "desc": "사건 당일 통화기록"},
    {"id": "e3", "name": "혈흔", "desc": "문 손잡이의 혈흔"}
  ],
  "timeline": [
    {"time": "22:00", "event": "저녁 식사 종료"},
    {"time": "23:10", "event": "비명 소리"}
  ],
  "answer": {"culprit": "c1", "motive": "도박 빚", "method": "독살", "key_evidence": ["e1", "e3"]}
}`

func TestParseCaseContent(t *testing.T) {
	content, err := models.ParseCaseContent(testContentJSON)
	require.NoError(t, err)
	assert.Equal(t, "저택의 밤", content.Scenario.Title)
	assert.Len(t, content.Characters, 2)
	assert.Len(t, content.Evidence, 3)
	assert.Equal(t, "c1", content.Answer.Culprit)

	// Malformed content degrades to an empty structure instead of aborting.
	empty, err := models.ParseCaseContent("{broken")
	assert.Error(t, err)
	assert.Equal(t, models.CaseContent{}, empty)

	empty, err = models.ParseCaseContent("")
	assert.NoError(t, err)
	assert.Equal(t, models.CaseContent{}, empty)
}

func TestCaseContentTruth(t *testing.T) {
	content, err := models.ParseCaseContent(testContentJSON)
	require.NoError(t, err)

	truth := content.Truth()
	assert.Equal(t, "c1", truth.CulpritID)
	assert.Equal(t, "김민준", truth.CulpritName)
	assert.Equal(t, "도박 빚", truth.Motive)
	assert.Equal(t, "독살", truth.Method)
	assert.Equal(t, []string{"e1", "e3"}, truth.KeyEvidenceIDs)
	assert.True(t, truth.IsKeyEvidence("e3"))
	assert.False(t, truth.IsKeyEvidence("e2"))
	assert.Equal(t, []string{"지갑", "혈흔"}, truth.KeyEvidenceNames())
}

func TestCaseContentTruthFallbacks(t *testing.T) {
	// Answer without a culprit falls back to the character with the culprit role.
	content := models.CaseContent{
		Characters: []models.Character{
			{Role: "용의자", ID: "c2", Name: "박서연"},
			{Role: models.RoleCulprit, ID: "c9", Name: "홍길동"},
		},
	}
	truth := content.Truth()
	assert.Equal(t, "c9", truth.CulpritID)
	assert.Equal(t, "홍길동", truth.CulpritName)

	// Unknown culprit id keeps the id as the display name.
	content = models.CaseContent{
		Answer: models.CaseAnswer{Culprit: "ghost", KeyEvidence: []string{"missing"}},
	}
	truth = content.Truth()
	assert.Equal(t, "ghost", truth.CulpritName)
	// Key evidence ids missing from the catalog fall back to the raw id.
	assert.Equal(t, []string{"missing"}, truth.KeyEvidenceNames())
}
