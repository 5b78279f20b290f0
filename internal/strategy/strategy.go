// Package strategy turns aggregated signals into raw orders.
package strategy

import (
	"encoding/json"
	"fmt"

	"tradepipe/internal/message"
)

// Rule decides whether an aggregated signal becomes an order. A nil return
// means the signal is dropped (the stage acks without output).
type Rule interface {
	Evaluate(agg message.AggregatedSignal) *message.Order
	Name() string
}

const (
	defaultMaxRSI       = 30.0
	defaultMinSentiment = 0.6
	// The TA slot may omit the indicator value; a neutral RSI keeps the
	// rule from firing on partial data.
	neutralRSI = 50.0
)

type taFields struct {
	Value *float64 `json:"value"`
}

type sentimentFields struct {
	SentimentScore float64 `json:"sentiment_score"`
}

// readings extracts the RSI value and sentiment score from the raw slots,
// substituting neutral defaults for missing fields.
func readings(agg message.AggregatedSignal) (rsi, score float64) {
	rsi = neutralRSI
	var taf taFields
	if err := json.Unmarshal(agg.TA, &taf); err == nil && taf.Value != nil {
		rsi = *taf.Value
	}
	var sf sentimentFields
	if err := json.Unmarshal(agg.Sentiment, &sf); err == nil {
		score = sf.SentimentScore
	}
	return rsi, score
}

// Threshold is the long-only entry rule: oversold RSI with strongly
// positive sentiment.
type Threshold struct {
	maxRSI       float64
	minSentiment float64
}

// NewThreshold builds the rule, falling back to the stock thresholds for
// non-positive inputs.
func NewThreshold(maxRSI, minSentiment float64) *Threshold {
	if maxRSI <= 0 {
		maxRSI = defaultMaxRSI
	}
	if minSentiment <= 0 {
		minSentiment = defaultMinSentiment
	}
	return &Threshold{maxRSI: maxRSI, minSentiment: minSentiment}
}

// Name returns the configured identifier for logging.
func (t *Threshold) Name() string { return "Threshold" }

// Evaluate emits a LONG order when RSI is below the oversold bound and
// sentiment clears the positive bound.
func (t *Threshold) Evaluate(agg message.AggregatedSignal) *message.Order {
	rsi, score := readings(agg)
	if rsi < t.maxRSI && score > t.minSentiment {
		return &message.Order{
			Asset:     agg.Asset,
			Side:      message.SideLong,
			Reason:    fmt.Sprintf("RSI=%.2f sentiment=%.2f", rsi, score),
			Timestamp: agg.Timestamp,
		}
	}
	return nil
}

// TwoSided extends Threshold with the mirrored short entry: overbought RSI
// with strongly negative sentiment.
type TwoSided struct {
	long *Threshold
}

// NewTwoSided builds the two-sided rule around the same thresholds.
func NewTwoSided(maxRSI, minSentiment float64) *TwoSided {
	return &TwoSided{long: NewThreshold(maxRSI, minSentiment)}
}

// Name returns the configured identifier for logging.
func (t *TwoSided) Name() string { return "TwoSided" }

// Evaluate tries the long entry first, then the mirrored short.
func (t *TwoSided) Evaluate(agg message.AggregatedSignal) *message.Order {
	if order := t.long.Evaluate(agg); order != nil {
		return order
	}
	rsi, score := readings(agg)
	if rsi > 100-t.long.maxRSI && score < -t.long.minSentiment {
		return &message.Order{
			Asset:     agg.Asset,
			Side:      message.SideShort,
			Reason:    fmt.Sprintf("RSI=%.2f sentiment=%.2f", rsi, score),
			Timestamp: agg.Timestamp,
		}
	}
	return nil
}
