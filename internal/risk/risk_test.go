package risk

import (
	"testing"

	"tradepipe/internal/message"
)

func TestSize(t *testing.T) {
	sizer := Sizer{Capital: 10000, RiskPerTrade: 0.01, Entry: 100, StopLoss: 95, TakeProfit: 110}
	sized := sizer.Size(message.Order{Asset: "BTC/USDT", Side: message.SideLong})

	if sized.PositionSize != 20 {
		t.Fatalf("expected position size 20 (100 risk / 5 distance), got %f", sized.PositionSize)
	}
	if sized.Entry != 100 || sized.StopLoss != 95 || sized.TakeProfit != 110 {
		t.Fatalf("expected static levels attached, got %+v", sized)
	}
	if sized.Asset != "BTC/USDT" || sized.Side != message.SideLong {
		t.Fatalf("expected order fields preserved, got %+v", sized)
	}
}

func TestSizeZeroStopDistance(t *testing.T) {
	sizer := Sizer{Capital: 10000, RiskPerTrade: 0.01, Entry: 100, StopLoss: 100}
	sized := sizer.Size(message.Order{Asset: "BTC/USDT"})
	if sized.PositionSize != 0 {
		t.Fatalf("expected zero size for zero stop distance, got %f", sized.PositionSize)
	}
}
