package models_test

import (
	"testing"

	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want models.PlayerAnswer
	}{
		{
			name: "nil",
			raw:  nil,
			want: models.PlayerAnswer{},
		},
		{
			name: "canonical keys",
			raw: map[string]any{
				"culprit":  "c1",
				"motive":   "돈",
				"method":   "독살",
				"evidence": "지갑",
				"time":     "밤 11시",
			},
			want: models.PlayerAnswer{Culprit: "c1", Motive: "돈", Method: "독살", Evidence: "지갑", Time: "밤 11시"},
		},
		{
			name: "legacy aliases",
			raw: map[string]any{
				"culprit":      "c1",
				"why":          "원한",
				"how":          "둔기로",
				"evidenceText": "혈흔",
				"when":         "자정",
			},
			want: models.PlayerAnswer{Culprit: "c1", Motive: "원한", Method: "둔기로", Evidence: "혈흔", Time: "자정"},
		},
		{
			name: "canonical wins over alias when both present",
			raw: map[string]any{
				"motive": "돈",
				"why":    "원한",
			},
			want: models.PlayerAnswer{Motive: "돈"},
		},
		{
			name: "empty canonical falls back to alias",
			raw: map[string]any{
				"motive": "",
				"why":    "원한",
			},
			want: models.PlayerAnswer{Motive: "원한"},
		},
		{
			name: "trims and stringifies",
			raw: map[string]any{
				"culprit": " c1 ",
				"motive":  42,
			},
			want: models.PlayerAnswer{Culprit: "c1", Motive: "42"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.NormalizeAnswer(tt.raw)
			tt.want.Raw = tt.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlayerAnswerCanonical(t *testing.T) {
	raw := map[string]any{
		"culprit":      "c1",
		"why":          "원한",
		"evidenceText": "혈흔",
		"extra":        "note to self",
	}
	answer := models.NormalizeAnswer(raw)
	canonical := answer.Canonical()

	// Canonical keys carry the normalised values, originals are preserved.
	assert.Equal(t, "c1", canonical["culprit"])
	assert.Equal(t, "원한", canonical["motive"])
	assert.Equal(t, "혈흔", canonical["evidence"])
	assert.Equal(t, "원한", canonical["why"])
	assert.Equal(t, "혈흔", canonical["evidenceText"])
	assert.Equal(t, "note to self", canonical["extra"])
	// Empty optional dimensions are omitted, not defaulted.
	_, hasTime := canonical["time"]
	assert.False(t, hasTime)
}
