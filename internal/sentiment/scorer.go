// Package sentiment scores free text into a compound value in [-1, 1].
package sentiment

import "strings"

// Scorer is a weighted-lexicon sentiment model: deterministic, fast, and
// good enough as a baseline for noisy social text.
type Scorer struct {
	weights map[string]float64
}

// defaultLexicon leans on crypto-forum vocabulary; weights are per-token
// contributions before clamping.
var defaultLexicon = map[string]float64{
	"bullish":  0.5,
	"moon":     0.4,
	"pump":     0.3,
	"surge":    0.3,
	"rally":    0.3,
	"gain":     0.2,
	"buy":      0.2,
	"adoption": 0.2,
	"bearish":  -0.5,
	"crash":    -0.5,
	"dump":     -0.4,
	"scam":     -0.4,
	"fraud":    -0.4,
	"plunge":   -0.3,
	"fear":     -0.2,
	"sell":     -0.2,
	"loss":     -0.2,
}

// NewScorer builds a scorer; a nil lexicon uses the built-in one.
func NewScorer(lexicon map[string]float64) *Scorer {
	if lexicon == nil {
		lexicon = defaultLexicon
	}
	return &Scorer{weights: lexicon}
}

// Score sums the weights of every token appearing in text and clamps the
// result to [-1, 1]. Matching is case-insensitive; absent tokens contribute
// nothing, so empty or neutral text scores 0.
func (s *Scorer) Score(text string) float64 {
	if text == "" {
		return 0
	}
	lowered := strings.ToLower(text)
	var score float64
	for token, weight := range s.weights {
		if strings.Contains(lowered, token) {
			score += weight
		}
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
