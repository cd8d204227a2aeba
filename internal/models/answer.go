package models

import (
	"fmt"
	"strings"
)

// PlayerAnswer is the player's final accusation with the field names already
// normalised to the canonical schema. Older frontends submitted the same data
// under legacy keys (why, how, evidenceText, when); both spellings stay in Raw
// so nothing the player typed gets lost, and the canonical key wins whenever
// both are present and non-empty.
type PlayerAnswer struct {
	Culprit  string
	Motive   string
	Method   string
	Evidence string
	Time     string
	// Raw preserves the submitted payload as-is for persistence and for the
	// legacy-alias correctness check.
	Raw map[string]any
}

// NormalizeAnswer folds the raw accusation payload into a PlayerAnswer.
func NormalizeAnswer(raw map[string]any) PlayerAnswer {
	answer := PlayerAnswer{Raw: raw}
	if raw == nil {
		return answer
	}
	answer.Culprit = StringField(raw, "culprit")
	answer.Motive = firstNonEmpty(StringField(raw, "motive"), StringField(raw, "why"))
	answer.Method = firstNonEmpty(StringField(raw, "method"), StringField(raw, "how"))
	answer.Evidence = firstNonEmpty(StringField(raw, "evidence"), StringField(raw, "evidenceText"))
	answer.Time = firstNonEmpty(StringField(raw, "time"), StringField(raw, "when"))
	return answer
}

// Canonical returns the payload to persist: canonical keys first in a stable
// order, followed by every original key that is not shadowed by a canonical one.
func (a PlayerAnswer) Canonical() map[string]any {
	out := make(map[string]any, len(a.Raw)+5)
	for key, value := range map[string]string{
		"culprit":  a.Culprit,
		"motive":   a.Motive,
		"method":   a.Method,
		"evidence": a.Evidence,
		"time":     a.Time,
	} {
		if value != "" {
			out[key] = value
		}
	}
	for key, value := range a.Raw {
		if _, ok := out[key]; !ok {
			out[key] = value
		}
	}
	return out
}

// StringField reads a trimmed string representation of a field from a raw
// JSON object, returning "" for missing or null values.
func StringField(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
