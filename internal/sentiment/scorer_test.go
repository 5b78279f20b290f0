package sentiment

import "testing"

func TestScorePositive(t *testing.T) {
	scorer := NewScorer(nil)
	score := scorer.Score("BTC looking bullish, expecting a rally")
	if score <= 0 {
		t.Fatalf("expected positive score, got %f", score)
	}
}

func TestScoreNegative(t *testing.T) {
	scorer := NewScorer(nil)
	score := scorer.Score("Total crash incoming, this project is a scam")
	if score >= 0 {
		t.Fatalf("expected negative score, got %f", score)
	}
}

func TestScoreNeutralAndEmpty(t *testing.T) {
	scorer := NewScorer(nil)
	if score := scorer.Score("the network upgrade shipped on schedule"); score != 0 {
		t.Fatalf("expected neutral score, got %f", score)
	}
	if score := scorer.Score(""); score != 0 {
		t.Fatalf("expected zero for empty text, got %f", score)
	}
}

func TestScoreClamped(t *testing.T) {
	scorer := NewScorer(map[string]float64{"up": 2.5, "down": -2.5})
	if score := scorer.Score("up up up"); score != 1 {
		t.Fatalf("expected clamp at 1, got %f", score)
	}
	if score := scorer.Score("down we go"); score != -1 {
		t.Fatalf("expected clamp at -1, got %f", score)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	scorer := NewScorer(nil)
	if scorer.Score("BULLISH") != scorer.Score("bullish") {
		t.Fatalf("expected case-insensitive matching")
	}
}
