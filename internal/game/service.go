// Package game orchestrates the finish and report flows: it gathers the
// scenario ground truth, the session log and the player's accusation, drives
// the scoring engine and the external providers, and persists the outcome.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/mlahtinen/gumshoe/internal/nlp"
	"github.com/mlahtinen/gumshoe/internal/repositories"
	"github.com/mlahtinen/gumshoe/internal/scoring"
)

// Analyzer grades a finished play session. Implemented by the NLP sidecar
// client; errors trigger the fallback chain instead of failing the finish.
type Analyzer interface {
	Analyze(ctx context.Context, req nlp.AnalyzeRequest) (*nlp.AnalyzeResponse, error)
}

// Config carries the two independently tunable cutoffs.
type Config struct {
	// ReportThreshold is the default for the on-demand similarity report.
	ReportThreshold float64
	// OXThreshold is the finish-time O/X cutoff persisted with the skill scores.
	OXThreshold float64
}

type Service struct {
	scenarios *repositories.ScenarioRepository
	sessions  *repositories.SessionRepository
	results   *repositories.ResultRepository
	analyzer  Analyzer
	engine    *scoring.Engine
	config    Config
	logger    *slog.Logger
}

func NewService(
	scenarios *repositories.ScenarioRepository,
	sessions *repositories.SessionRepository,
	results *repositories.ResultRepository,
	analyzer Analyzer,
	engine *scoring.Engine,
	config Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		scenarios: scenarios,
		sessions:  sessions,
		results:   results,
		analyzer:  analyzer,
		engine:    engine,
		config:    config,
		logger:    logger.With("source", "game.Service"),
	}
}

// FinishRequest closes a session with the player's final accusation. Skills may
// carry explicit caller-graded scores which take precedence over the analysis
// providers.
type FinishRequest struct {
	SessionID  int64              `json:"sessionId" validate:"required,gt=0"`
	AnswerJSON map[string]any     `json:"answerJson"`
	Skills     map[string]float64 `json:"skills,omitempty"`
	Timings    map[string]any     `json:"timings,omitempty"`
}

// Finish verifies and grades the accusation and persists the result. Provider
// outages degrade to documented defaults; the only hard failures are an absent
// session or scenario and the final write itself.
func (s *Service) Finish(ctx context.Context, req FinishRequest) (int64, error) {
	session, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return 0, errors.Wrap(err, "load session")
	}
	scenario, err := s.scenarios.Get(ctx, session.ScenIdx)
	if err != nil {
		return 0, errors.Wrap(err, "load scenario")
	}

	content, err := models.ParseCaseContent(scenario.ContentJSON)
	if err != nil {
		s.logger.WarnContext(ctx, "malformed scenario content, grading against empty truth",
			slog.Int64("scen_idx", scenario.ScenIdx), errors.SlogError(err))
	}
	truth := content.Truth()
	answer := models.NormalizeAnswer(req.AnswerJSON)

	sessionLog, err := s.sessions.Log(ctx, req.SessionID)
	if err != nil {
		return 0, errors.Wrap(err, "load session log")
	}

	skills := s.resolveSkills(ctx, req, scenario, content, sessionLog)
	skillsPayload := make(map[string]any, len(skills)+5)
	for name, score := range skills {
		skillsPayload[name] = score
	}
	s.attachSimilarity(ctx, skillsPayload, truth, answer)

	answerJSON, err := json.Marshal(answer.Canonical())
	if err != nil {
		return 0, errors.Wrap(err, "marshal answer")
	}
	skillsJSON, err := json.Marshal(skillsPayload)
	if err != nil {
		return 0, errors.Wrap(err, "marshal skills")
	}

	resultID, err := s.results.Save(ctx, models.GameResult{
		SessionID:  session.SessionID,
		ScenIdx:    session.ScenIdx,
		PlayerID:   session.PlayerID,
		AnswerJSON: string(answerJSON),
		SkillsJSON: string(skillsJSON),
		IsCorrect:  scoring.CheckCorrect(req.AnswerJSON, truth),
	})
	if err != nil {
		return 0, errors.Wrap(err, "save result")
	}

	if err = s.sessions.Finish(ctx, session.SessionID); err != nil {
		// The result is already stored; a stuck session status is not worth
		// failing the request over.
		s.logger.ErrorContext(ctx, "could not mark session finished",
			slog.Int64("session_id", session.SessionID), errors.SlogError(err))
	}

	return resultID, nil
}

// resolveSkills picks the five skill scores through an ordered fallback chain:
// explicit caller scores, the hf analysis engine, the dummy engine, and finally
// all zeros. The first source that yields scores short-circuits the rest.
func (s *Service) resolveSkills(
	ctx context.Context,
	req FinishRequest,
	scenario *models.Scenario,
	content models.CaseContent,
	sessionLog models.SessionLog,
) map[string]int {
	// Explicit caller scores win over both engines.
	if req.Skills != nil {
		return scoring.CoerceSkills(req.Skills)
	}

	analyzeReq := nlp.AnalyzeRequest{
		SessionID:   req.SessionID,
		LogJSON:     logPayload(sessionLog),
		CaseTitle:   firstNonEmpty(content.Scenario.Title, scenario.Title),
		CaseSummary: firstNonEmpty(content.Scenario.Summary, scenario.Summary),
		Facts:       buildFacts(content),
		FinalAnswer: req.AnswerJSON,
		Timings:     req.Timings,
	}

	strategies := []struct {
		name  string
		fetch func(context.Context) (map[string]float64, error)
	}{
		{name: nlp.EngineHF, fetch: s.analyzeWith(analyzeReq, nlp.EngineHF)},
		{name: nlp.EngineDummy, fetch: s.analyzeWith(analyzeReq, nlp.EngineDummy)},
	}

	for _, strategy := range strategies {
		skills, err := strategy.fetch(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "skill source unavailable",
				slog.String("strategy", strategy.name), errors.SlogError(err))
			continue
		}
		return scoring.CoerceSkills(skills)
	}
	// Even with every provider down the finish succeeds with zero scores.
	return scoring.CoerceSkills(nil)
}

func (s *Service) analyzeWith(req nlp.AnalyzeRequest, engine string) func(context.Context) (map[string]float64, error) {
	return func(ctx context.Context) (map[string]float64, error) {
		req.Engine = engine
		resp, err := s.analyzer.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.Skills == nil {
			return nil, errors.New("analysis response without skills", slog.String("engine", engine))
		}
		return resp.Skills, nil
	}
}

// attachSimilarity adds the finish-time similarity floats and the O/X cutoff to
// the persisted skills payload. A provider failure leaves the payload without
// similarity fields rather than storing zeros.
func (s *Service) attachSimilarity(
	ctx context.Context,
	payload map[string]any,
	truth models.CaseTruth,
	answer models.PlayerAnswer,
) {
	sims, err := s.engine.Similarity(ctx, truth, answer)
	if err != nil {
		s.logger.WarnContext(ctx, "finish-time similarity unavailable", errors.SlogError(err))
		return
	}
	for _, key := range []string{scoring.KeySimMotive, scoring.KeySimMethod, scoring.KeySimEvidence, scoring.KeySimTime} {
		if v, ok := sims[key]; ok && scoring.Finite(v) {
			payload[key] = scoring.Clamp01(v)
		}
	}
	payload["sim_threshold"] = s.config.OXThreshold
}

// Report builds the on-demand similarity report for a stored result.
func (s *Service) Report(ctx context.Context, result *models.GameResult, threshold float64) (models.SimilarityReport, error) {
	session, err := s.sessions.Get(ctx, result.SessionID)
	if err != nil {
		return models.SimilarityReport{}, errors.Wrap(err, "load session")
	}
	scenario, err := s.scenarios.Get(ctx, session.ScenIdx)
	if err != nil {
		return models.SimilarityReport{}, errors.Wrap(err, "load scenario")
	}
	content, err := models.ParseCaseContent(scenario.ContentJSON)
	if err != nil {
		s.logger.WarnContext(ctx, "malformed scenario content, reporting against empty truth",
			slog.Int64("scen_idx", scenario.ScenIdx), errors.SlogError(err))
	}

	var raw map[string]any
	if err = json.Unmarshal([]byte(result.AnswerJSON), &raw); err != nil {
		s.logger.WarnContext(ctx, "malformed stored answer, reporting against empty answer",
			slog.Int64("result_id", result.ResultID), errors.SlogError(err))
	}

	return s.engine.Report(ctx, content.Truth(), models.NormalizeAnswer(raw), threshold), nil
}

// ReportThreshold resolves the threshold for the on-demand report.
func (s *Service) ReportThreshold() float64 {
	return s.config.ReportThreshold
}

// buildFacts flattens alibis, evidence and the timeline into the fact list for
// the analysis provider, capped at 12 entries.
func buildFacts(content models.CaseContent) []string {
	const maxFacts = 12
	var facts []string
	for _, ch := range content.Characters {
		if ch.Alibi != "" {
			facts = append(facts, fmt.Sprintf("%s 알리바이: %s", ch.Name, ch.Alibi))
		}
	}
	for _, ev := range content.Evidence {
		if ev.Name == "" {
			continue
		}
		fact := "증거: " + ev.Name
		if ev.Desc != "" {
			fact += " - " + ev.Desc
		}
		facts = append(facts, fact)
	}
	for _, entry := range content.Timeline {
		if entry.Time != "" && entry.Event != "" {
			facts = append(facts, fmt.Sprintf("타임라인 %s: %s", entry.Time, entry.Event))
		}
	}
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts
}

func logPayload(sessionLog models.SessionLog) map[string]any {
	entries := make([]any, 0, len(sessionLog.Logs))
	for _, entry := range sessionLog.Logs {
		entries = append(entries, map[string]any{
			"speaker": entry.Speaker,
			"message": entry.Message,
			"suspect": entry.Suspect,
		})
	}
	return map[string]any{"logs": entries}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
