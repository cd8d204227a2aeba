package models

import (
	"encoding/json"
	"time"

	"github.com/mlahtinen/gumshoe/internal/errors"
)

// RoleCulprit marks the guilty character in the scenario content. Scenario
// authoring happens in Korean, so the role markers are Korean too.
const RoleCulprit = "범인"

// UnknownLabel is the placeholder shown when scenario content is missing a field.
const UnknownLabel = "알 수 없음"

// Scenario is a published detective case as stored in the scenarios table.
type Scenario struct {
	ScenIdx     int64     `db:"scen_idx"`
	Title       string    `db:"title"`
	Summary     string    `db:"summary"`
	ContentJSON string    `db:"content_json"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

// Character is one of the scenario's cast. Role distinguishes the culprit from
// innocent suspects.
type Character struct {
	Role    string `json:"role"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Alibi   string `json:"alibi"`
	Job     string `json:"job,omitempty"`
	Mission string `json:"mission,omitempty"`
}

// EvidenceItem is a named clue the player can discover during play.
type EvidenceItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// TimelineEntry is one step of the authored sequence of events.
type TimelineEntry struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// CaseMeta carries the presentation fields of the scenario content.
type CaseMeta struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// CaseAnswer is the authored ground truth inside the scenario content.
type CaseAnswer struct {
	Culprit     string   `json:"culprit"`
	Motive      string   `json:"motive"`
	Method      string   `json:"method"`
	KeyEvidence []string `json:"key_evidence"`
	Time        string   `json:"time,omitempty"`
}

// CaseContent is the parsed scenario content JSON.
type CaseContent struct {
	Scenario   CaseMeta        `json:"scenario"`
	Characters []Character     `json:"characters"`
	Evidence   []EvidenceItem  `json:"evidence"`
	Timeline   []TimelineEntry `json:"timeline"`
	Answer     CaseAnswer      `json:"answer"`
}

// ParseCaseContent decodes the scenario content JSON. On malformed input it
// returns an empty CaseContent together with the error so that callers can log
// the problem and continue with defaults instead of aborting the request.
func ParseCaseContent(contentJSON string) (CaseContent, error) {
	var content CaseContent
	if contentJSON == "" {
		return content, nil
	}
	if err := json.Unmarshal([]byte(contentJSON), &content); err != nil {
		return CaseContent{}, errors.Wrap(err, "parse scenario content")
	}
	return content, nil
}

// CaseTruth is the ground truth an accusation is verified against. It is derived
// once from the scenario content and read-only afterwards.
type CaseTruth struct {
	CulpritID   string
	CulpritName string
	Motive      string
	Method      string
	Time        string
	// KeyEvidenceIDs are the catalog entries required for a correct evidence
	// verdict, kept in authored order.
	KeyEvidenceIDs []string
	// EvidenceCatalog preserves the authored ordering, which decides score ties.
	EvidenceCatalog []EvidenceItem
}

// Truth derives the CaseTruth from the parsed content.
//
// The culprit id is taken from the authored answer, falling back to the character
// with the culprit role. The display name resolves through the character list and
// falls back to the id itself when the cast has no matching entry.
func (c CaseContent) Truth() CaseTruth {
	culpritID := c.Answer.Culprit
	if culpritID == "" {
		for _, ch := range c.Characters {
			if ch.Role == RoleCulprit {
				culpritID = ch.ID
				break
			}
		}
	}

	culpritName := culpritID
	for _, ch := range c.Characters {
		if ch.ID == culpritID && ch.Name != "" {
			culpritName = ch.Name
			break
		}
	}

	return CaseTruth{
		CulpritID:       culpritID,
		CulpritName:     culpritName,
		Motive:          c.Answer.Motive,
		Method:          c.Answer.Method,
		Time:            c.Answer.Time,
		KeyEvidenceIDs:  append([]string(nil), c.Answer.KeyEvidence...),
		EvidenceCatalog: c.Evidence,
	}
}

// IsKeyEvidence reports whether the given catalog id belongs to the key evidence.
func (t CaseTruth) IsKeyEvidence(id string) bool {
	for _, key := range t.KeyEvidenceIDs {
		if key == id {
			return true
		}
	}
	return false
}

// KeyEvidenceNames resolves the key evidence ids to their display names in
// authored order, falling back to the raw id for entries missing from the catalog.
func (t CaseTruth) KeyEvidenceNames() []string {
	names := make([]string, 0, len(t.KeyEvidenceIDs))
	for _, id := range t.KeyEvidenceIDs {
		name := id
		for _, item := range t.EvidenceCatalog {
			if item.ID == id && item.Name != "" {
				name = item.Name
				break
			}
		}
		names = append(names, name)
	}
	return names
}
