package scoring

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
)

// Engine verifies a player's final accusation against the scenario ground truth
// and produces the multi-dimensional similarity report. The engine holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	scorer SimilarityScorer
	logger *slog.Logger
	// maxParallel bounds how many evidence pieces are scored concurrently.
	maxParallel int
}

func NewEngine(scorer SimilarityScorer, logger *slog.Logger) *Engine {
	return &Engine{
		scorer:      scorer,
		logger:      logger.With("source", "scoring.Engine"),
		maxParallel: 4,
	}
}

// Report compares the accusation to the ground truth with the given threshold.
//
// The culprit dimension is exact string identity, motive and method are
// delegated similarity scores gated by threshold, and evidence is the mean of
// the per-piece best scores. Provider failures degrade each affected dimension
// to 0.0 without failing the report.
func (e *Engine) Report(
	ctx context.Context,
	truth models.CaseTruth,
	answer models.PlayerAnswer,
	threshold float64,
) models.SimilarityReport {
	verdictCulprit := CulpritMatches(answer.Culprit, truth)
	simCulprit := 0.0
	if verdictCulprit {
		simCulprit = 1.0
	}

	sims, err := e.scorer.Similarity(ctx, map[string]string{
		PairMotivePlayer: answer.Motive,
		PairMotiveTruth:  truth.Motive,
		PairMethodPlayer: answer.Method,
		PairMethodTruth:  truth.Method,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "similarity provider failed, motive and method default to zero",
			errors.SlogError(err))
	}
	simMotive := Score(sims, KeySimMotive)
	simMethod := Score(sims, KeySimMethod)

	breakdown := e.matchPieces(ctx, SplitPieces(answer.Evidence), truth, EvidenceThreshold(threshold))
	simEvidence := 0.0
	if len(breakdown) > 0 {
		for _, piece := range breakdown {
			simEvidence += piece.Score
		}
		simEvidence /= float64(len(breakdown))
	}

	avg3, avg4, passed3, passed := Aggregate(simCulprit, simMotive, simMethod, simEvidence, threshold)

	return models.SimilarityReport{
		SimCulprit:  simCulprit,
		SimMotive:   simMotive,
		SimMethod:   simMethod,
		SimEvidence: simEvidence,
		Avg3:        avg3,
		Avg4:        avg4,
		Threshold:   threshold,
		Passed3:     passed3,
		Passed:      passed,
		Verdict: models.DimensionVerdict{
			Culprit: verdictCulprit,
			Motive:  simMotive >= threshold,
			Method:  simMethod >= threshold,
		},
		EvidenceBreakdown: breakdown,
	}
}

// Similarity runs the single finish-time provider call over every dimension the
// accusation actually answers. Unlike Report, the evidence dimension compares
// the raw submission to the joined key evidence names in one pair, and the
// optional time dimension is included when both sides carry a value. The error
// is surfaced so the caller can decide to omit similarity fields entirely.
func (e *Engine) Similarity(
	ctx context.Context,
	truth models.CaseTruth,
	answer models.PlayerAnswer,
) (map[string]float64, error) {
	pairs := map[string]string{
		PairMotivePlayer: answer.Motive,
		PairMotiveTruth:  truth.Motive,
		PairMethodPlayer: answer.Method,
		PairMethodTruth:  truth.Method,
	}
	if keyNames := truth.KeyEvidenceNames(); answer.Evidence != "" && len(keyNames) > 0 {
		pairs[PairEvidencePlayer] = answer.Evidence
		pairs[PairEvidenceTruth] = strings.Join(keyNames, ", ")
	}
	if answer.Time != "" && truth.Time != "" {
		pairs[PairTimePlayer] = answer.Time
		pairs[PairTimeTruth] = truth.Time
	}
	return e.scorer.Similarity(ctx, pairs)
}

// matchPieces scores every evidence piece against the catalog. Pieces are
// independent, so they are scored concurrently; the result slice keeps the
// piece order and each piece resolves its catalog ties deterministically.
func (e *Engine) matchPieces(
	ctx context.Context,
	pieces []string,
	truth models.CaseTruth,
	threshold float64,
) []models.EvidencePiece {
	if len(pieces) == 0 {
		return []models.EvidencePiece{}
	}
	breakdown := make([]models.EvidencePiece, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, piece := range pieces {
		g.Go(func() error {
			breakdown[i] = e.matchPiece(gctx, piece, truth, threshold)
			return nil
		})
	}
	// Workers never return errors; provider failures degrade to zero scores.
	_ = g.Wait()
	return breakdown
}

// matchPiece finds the best-scoring catalog entry for one evidence piece. Ties
// keep the first highest entry in catalog iteration order. The piece counts as
// matched only when its best match is key evidence and clears the threshold.
func (e *Engine) matchPiece(
	ctx context.Context,
	piece string,
	truth models.CaseTruth,
	threshold float64,
) models.EvidencePiece {
	var (
		best     float64
		bestID   string
		bestName string
	)
	for _, item := range truth.EvidenceCatalog {
		score := e.scoreEvidence(ctx, piece, item.Name)
		if score > best {
			best, bestID, bestName = score, item.ID, item.Name
		}
	}

	matched := bestID != "" && truth.IsKeyEvidence(bestID) && best >= threshold

	return models.EvidencePiece{
		Text:        piece,
		Matched:     matched,
		MatchedID:   bestID,
		MatchedName: bestName,
		Score:       best,
	}
}

// scoreEvidence scores one piece against one catalog name: the cheap containment
// check short-circuits at 1.0 before the provider gets involved; otherwise the
// provider's evidence similarity is used, defaulting to 0.0 on error.
func (e *Engine) scoreEvidence(ctx context.Context, piece, name string) float64 {
	if ContainsName(piece, name) {
		return 1.0
	}
	sims, err := e.scorer.Similarity(ctx, map[string]string{
		PairEvidencePlayer: piece,
		PairEvidenceTruth:  name,
	})
	if err != nil {
		e.logger.DebugContext(ctx, "evidence similarity failed, piece defaults to zero",
			slog.String("piece", piece), errors.SlogError(err))
		return 0
	}
	return Score(sims, KeySimEvidence)
}

// ContainsName reports whether the whole normalized catalog name appears inside
// the normalized player fragment. Requiring the full name of at least two
// normalized characters keeps short names from over-matching.
func ContainsName(piece, name string) bool {
	normalized := Normalize(name)
	return utf8.RuneCountInString(normalized) >= 2 && strings.Contains(Normalize(piece), normalized)
}

// CulpritMatches checks the accused culprit against the ground truth. Identity
// must be exact: the trimmed submission has to equal either the culprit id or
// the resolved display name, case-insensitively. No fuzzy matching.
func CulpritMatches(player string, truth models.CaseTruth) bool {
	accused := strings.TrimSpace(player)
	if accused == "" {
		return false
	}
	return (truth.CulpritID != "" && strings.EqualFold(accused, truth.CulpritID)) ||
		(truth.CulpritName != "" && strings.EqualFold(accused, truth.CulpritName))
}

// CheckCorrect is the binary finish-time correctness check. It is independent
// of the similarity report: the accused culprit may arrive under any of the
// legacy field aliases, and a match against either the ground-truth id or name
// counts. The two mechanisms can disagree; both outcomes are persisted.
func CheckCorrect(raw map[string]any, truth models.CaseTruth) bool {
	for _, key := range []string{"culprit", "culpritId", "selectedCulpritId", "culprit_name"} {
		if CulpritMatches(models.StringField(raw, key), truth) {
			return true
		}
	}
	return false
}
