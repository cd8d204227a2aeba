package scoring

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder so that comparisons do not
// allocate a new caser per call.
var foldCaser = cases.Fold()

// MaxEvidencePieces caps how many fragments of the free-text evidence answer are
// scored. Each unmatched fragment can cost one similarity call per catalog
// entry, so the cap bounds the outbound fan-out.
const MaxEvidencePieces = 12

// Normalize lowercases s with Unicode case folding and strips all whitespace and
// punctuation. The result is only meant for containment comparisons. It never
// fails; empty input yields an empty string.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range foldCaser.String(s) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pieceSeparator matches the characters players use to separate evidence items:
// commas, semicolons, newlines and the common bullet marks.
func pieceSeparator(r rune) bool {
	switch r {
	case ',', ';', '\n', '\r', '·', '•':
		return true
	}
	return false
}

// SplitPieces splits the free-text evidence answer into trimmed fragments,
// discarding empties and capping the result at MaxEvidencePieces. It never
// fails; empty input yields an empty slice.
func SplitPieces(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	for _, raw := range strings.FieldsFunc(text, pieceSeparator) {
		piece := strings.TrimSpace(raw)
		if piece == "" {
			continue
		}
		pieces = append(pieces, piece)
		if len(pieces) == MaxEvidencePieces {
			break
		}
	}
	return pieces
}
