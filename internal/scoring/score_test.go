package scoring_test

import (
	"math"
	"testing"

	"github.com/mlahtinen/gumshoe/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func TestEvidenceThreshold(t *testing.T) {
	// A caller can tighten evidence matching but never loosen it below the floor.
	assert.InDelta(t, 0.72, scoring.EvidenceThreshold(0.3), 1e-9)
	assert.InDelta(t, 0.72, scoring.EvidenceThreshold(0.72), 1e-9)
	assert.InDelta(t, 0.9, scoring.EvidenceThreshold(0.9), 1e-9)
}

func TestScore(t *testing.T) {
	sims := map[string]float64{
		"sim_motive":   0.8,
		"sim_method":   1.7,
		"sim_evidence": -0.2,
		"sim_nan":      math.NaN(),
		"sim_inf":      math.Inf(1),
	}
	assert.InDelta(t, 0.8, scoring.Score(sims, "sim_motive"), 1e-9)
	assert.InDelta(t, 1.0, scoring.Score(sims, "sim_method"), 1e-9)
	assert.InDelta(t, 0.0, scoring.Score(sims, "sim_evidence"), 1e-9)
	assert.InDelta(t, 0.0, scoring.Score(sims, "sim_nan"), 1e-9)
	assert.InDelta(t, 0.0, scoring.Score(sims, "sim_inf"), 1e-9)
	assert.InDelta(t, 0.0, scoring.Score(sims, "missing"), 1e-9)
	assert.InDelta(t, 0.0, scoring.Score(nil, "sim_motive"), 1e-9)
}

func TestClampSkill(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 49.5, want: 50},
		{in: 100, want: 100},
		{in: 180, want: 100},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoring.ClampSkill(tt.in))
	}
}

func TestCoerceSkills(t *testing.T) {
	skills := scoring.CoerceSkills(map[string]float64{
		"logic":      88.4,
		"creativity": 120,
		"focus":      -3,
		"unknown":    55,
	})
	assert.Equal(t, map[string]int{
		"logic":      88,
		"creativity": 100,
		"focus":      0,
		"diversity":  0,
		"depth":      0,
	}, skills)
}

func TestAggregate(t *testing.T) {
	avg3, avg4, passed3, passed := scoring.Aggregate(1, 0.8, 0.6, 0.4, 0.72)
	assert.InDelta(t, (1+0.8+0.6)/3, avg3, 1e-9)
	assert.InDelta(t, (1+0.8+0.6+0.4)/4, avg4, 1e-9)
	assert.True(t, passed3)
	assert.False(t, passed)

	// Recomputing from the four components reproduces the aggregate.
	again3, again4, _, _ := scoring.Aggregate(1, 0.8, 0.6, 0.4, 0.72)
	assert.InDelta(t, avg3, again3, 1e-9)
	assert.InDelta(t, avg4, again4, 1e-9)
}
