package models

import (
	"database/sql"
	"time"
)

// GameSession is one playthrough of a scenario.
type GameSession struct {
	SessionID  int64          `db:"session_id"`
	ScenIdx    int64          `db:"scen_idx"`
	PlayerID   sql.NullString `db:"player_id"`
	LogJSON    string         `db:"log_json"`
	Status     string         `db:"status"`
	StartedAt  time.Time      `db:"started_at"`
	FinishedAt sql.NullTime   `db:"finished_at"`
}

// Session statuses.
const (
	SessionPlaying  = "playing"
	SessionFinished = "finished"
)

// SpeakerPlayer marks the detective's lines in the session log. The analysis
// provider only grades the player's questions.
const SpeakerPlayer = "PLAYER"

// LogEntry is one line of the session chat log.
type LogEntry struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
	Suspect string `json:"suspect,omitempty"`
}

// SessionLog is the shape of the log_json column.
type SessionLog struct {
	Logs []LogEntry `json:"logs"`
}

// GameResult is the persisted outcome of a finished session. AnswerJSON and
// SkillsJSON are stored verbatim; the row is never mutated after insertion so
// the grade reflects the state of the engine at finish time.
type GameResult struct {
	ResultID   int64          `db:"result_id"`
	SessionID  int64          `db:"session_id"`
	ScenIdx    int64          `db:"scen_idx"`
	PlayerID   sql.NullString `db:"player_id"`
	AnswerJSON string         `db:"answer_json"`
	SkillsJSON string         `db:"skills_json"`
	IsCorrect  bool           `db:"is_correct"`
	CreatedAt  time.Time      `db:"created_at"`
}

// SkillNames are the five graded skills, in presentation order.
var SkillNames = []string{"logic", "creativity", "focus", "diversity", "depth"}

// EvidencePiece is one fragment of the player's free-text evidence answer after
// splitting, together with its best catalog match.
type EvidencePiece struct {
	Text        string  `json:"text"`
	Matched     bool    `json:"matched"`
	MatchedID   string  `json:"matchedId,omitempty"`
	MatchedName string  `json:"matchedName,omitempty"`
	Score       float64 `json:"score"`
}

// DimensionVerdict holds the boolean per-dimension outcomes. Evidence stays a
// continuous score and only feeds the aggregate threshold.
type DimensionVerdict struct {
	Culprit bool `json:"culprit"`
	Motive  bool `json:"motive"`
	Method  bool `json:"method"`
}

// SimilarityReport is the on-demand comparison of a stored accusation against
// the scenario ground truth.
type SimilarityReport struct {
	SimCulprit        float64          `json:"sim_culprit"`
	SimMotive         float64          `json:"sim_motive"`
	SimMethod         float64          `json:"sim_method"`
	SimEvidence       float64          `json:"sim_evidence"`
	Avg3              float64          `json:"sim_avg3"`
	Avg4              float64          `json:"sim_avg"`
	Threshold         float64          `json:"threshold"`
	Passed3           bool             `json:"passed3"`
	Passed            bool             `json:"passed"`
	Verdict           DimensionVerdict `json:"verdict"`
	EvidenceBreakdown []EvidencePiece  `json:"evidence_breakdown"`
}
