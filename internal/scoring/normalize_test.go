package scoring_test

import (
	"strings"
	"testing"

	"github.com/mlahtinen/gumshoe/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercases", in: "CCTV Footage", want: "cctvfootage"},
		{name: "strips whitespace", in: " 목격자 진술 ", want: "목격자진술"},
		{name: "strips punctuation", in: "피 묻은 칼!?", want: "피묻은칼"},
		{name: "strips bullets", in: "• 지갑 · 혈흔", want: "지갑혈흔"},
		{name: "only punctuation", in: "..., !!", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.Normalize(tt.in))
		})
	}
}

func TestSplitPieces(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank", in: "  \n ", want: nil},
		{
			name: "commas and newlines",
			in:   "지갑, 혈흔\n목격자 진술",
			want: []string{"지갑", "혈흔", "목격자 진술"},
		},
		{
			name: "semicolons and bullets",
			in:   "칼; 장갑 • 통화기록",
			want: []string{"칼", "장갑", "통화기록"},
		},
		{
			name: "drops empty pieces",
			in:   ",,지갑,, ,혈흔,",
			want: []string{"지갑", "혈흔"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.SplitPieces(tt.in))
		})
	}
}

func TestSplitPiecesCap(t *testing.T) {
	in := strings.Repeat("단서,", 30)
	pieces := scoring.SplitPieces(in)
	assert.Len(t, pieces, scoring.MaxEvidencePieces)
}
