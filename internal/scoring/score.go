package scoring

import (
	"context"
	"math"

	"github.com/mlahtinen/gumshoe/internal/models"
)

// Thresholds. The report default and the finish-time O/X cutoff are separate,
// independently configured values; these constants are only their defaults.
const (
	// DefaultReportThreshold gates the on-demand similarity report.
	DefaultReportThreshold = 0.72
	// DefaultOXThreshold is the finish-time cutoff persisted with the skill scores.
	DefaultOXThreshold = 0.75
	// MinEvidenceThreshold is the floor for evidence matching. Callers may
	// tighten evidence matching with a higher threshold but never loosen it
	// below this confidence bar.
	MinEvidenceThreshold = 0.72
)

// Similarity pair keys understood by the provider. Requests may carry any
// subset of pairs; the response carries the matching sim_* keys.
const (
	PairMotivePlayer   = "motive_player"
	PairMotiveTruth    = "motive_truth"
	PairMethodPlayer   = "method_player"
	PairMethodTruth    = "method_truth"
	PairEvidencePlayer = "evidence_player"
	PairEvidenceTruth  = "evidence_truth"
	PairTimePlayer     = "time_player"
	PairTimeTruth      = "time_truth"

	KeySimMotive   = "sim_motive"
	KeySimMethod   = "sim_method"
	KeySimEvidence = "sim_evidence"
	KeySimTime     = "sim_time"
)

// SimilarityScorer computes semantic similarity for pairs of texts. Network and
// parse failures surface as errors; the engine converts them to zero scores so a
// flaky provider can never fail a verification request.
type SimilarityScorer interface {
	Similarity(ctx context.Context, pairs map[string]string) (map[string]float64, error)
}

// EvidenceThreshold applies the evidence floor to a caller-supplied threshold.
func EvidenceThreshold(threshold float64) float64 {
	return math.Max(MinEvidenceThreshold, threshold)
}

// Clamp01 clamps a similarity score to [0,1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Score reads one similarity value from a provider result. Missing or
// non-finite values count as absent and yield 0.0; present values are clamped
// to [0,1].
func Score(sims map[string]float64, key string) float64 {
	v, ok := sims[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Clamp01(v)
}

// Finite reports whether a provider float is usable. NaN and infinities from an
// external provider are treated as absent, not as zero.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClampSkill rounds and clamps a skill score to an integer in [0,100].
func ClampSkill(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	iv := int(math.Round(v))
	if iv < 0 {
		return 0
	}
	if iv > 100 {
		return 100
	}
	return iv
}

// CoerceSkills converts a provider or caller skill map into the five named
// integer scores. Every skill is present in the result; missing entries
// default to zero.
func CoerceSkills(in map[string]float64) map[string]int {
	out := make(map[string]int, len(models.SkillNames))
	for _, name := range models.SkillNames {
		out[name] = ClampSkill(in[name])
	}
	return out
}

// Aggregate combines the dimension scores into the 3-way and 4-way averages and
// the pass verdicts against threshold.
func Aggregate(simCulprit, simMotive, simMethod, simEvidence, threshold float64) (avg3, avg4 float64, passed3, passed bool) {
	avg3 = (simCulprit + simMotive + simMethod) / 3
	avg4 = (simCulprit + simMotive + simMethod + simEvidence) / 4
	return avg3, avg4, avg3 >= threshold, avg4 >= threshold
}
