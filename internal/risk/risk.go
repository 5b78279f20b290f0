// Package risk sizes raw orders from a fixed capital-at-risk fraction.
package risk

import (
	"math"

	"tradepipe/internal/message"
)

// Sizer turns raw orders into sized orders. Entry, stop, and target are
// static levels for now rather than being derived from market state; the
// sizing formula is the part that matters.
type Sizer struct {
	Capital      float64
	RiskPerTrade float64
	Entry        float64
	StopLoss     float64
	TakeProfit   float64
}

// Size computes position_size = capital*riskPerTrade / |entry - stop| and
// attaches the static levels to the order.
func (s Sizer) Size(order message.Order) message.SizedOrder {
	riskAmount := s.Capital * s.RiskPerTrade
	distance := math.Abs(s.Entry - s.StopLoss)
	size := 0.0
	if distance > 0 {
		size = riskAmount / distance
	}
	return message.SizedOrder{
		Order:        order,
		PositionSize: size,
		Entry:        s.Entry,
		StopLoss:     s.StopLoss,
		TakeProfit:   s.TakeProfit,
	}
}
