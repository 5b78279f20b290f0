// Package position tracks open positions: side-aware stop/target
// evaluation, PnL, and the at-rest JSON store the monitor owns.
package position

import "tradepipe/internal/message"

// Assess marks one position to the given price. It returns the update to
// publish and whether the position closed this cycle. Stop-loss wins over
// take-profit when a price satisfies both (a gap through the whole range).
func Assess(pos message.ExecutionReport, price float64) (message.PositionUpdate, bool) {
	update := message.PositionUpdate{
		ExecutionReport: pos,
		CurrentPrice:    price,
	}

	if pos.Side == message.SideLong {
		update.PnL = (price - pos.Entry) * pos.PositionSize
	} else {
		update.PnL = (pos.Entry - price) * pos.PositionSize
	}

	switch {
	case pos.Side == message.SideLong && price <= pos.StopLoss,
		pos.Side == message.SideShort && price >= pos.StopLoss:
		update.Status = message.StatusClosedSL
		return update, true
	case pos.Side == message.SideLong && price >= pos.TakeProfit,
		pos.Side == message.SideShort && price <= pos.TakeProfit:
		update.Status = message.StatusClosedTP
		return update, true
	default:
		update.Status = message.StatusOpen
		return update, false
	}
}
