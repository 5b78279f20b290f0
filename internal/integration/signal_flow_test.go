package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradepipe/internal/aggregate"
	"tradepipe/internal/execution"
	"tradepipe/internal/message"
	"tradepipe/internal/position"
	"tradepipe/internal/risk"
	"tradepipe/internal/strategy"
)

// Walks one signal from aggregation through strategy, sizing, fill, and
// monitoring, the same way the stage binaries chain over the queues.
func TestSignalFlowOpensAndClosesPosition(t *testing.T) {
	engine := aggregate.NewEngine(0)

	taBody, _ := json.Marshal(message.TASignal{
		Symbol:    "BTC/USDT",
		Indicator: "RSI",
		Value:     25,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	sentBody, _ := json.Marshal(message.SentimentSignal{
		Asset:          "BTC/USDT",
		SentimentScore: 0.8,
		Source:         "reddit",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
	engine.UpdateTA("BTC/USDT", taBody)
	engine.UpdateSentiment("BTC/USDT", sentBody)

	combined := engine.Combined()
	if len(combined) != 1 {
		t.Fatalf("expected one aggregated signal, got %d", len(combined))
	}

	rule := strategy.Build("threshold", 30, 0.6)
	order := rule.Evaluate(combined[0])
	if order == nil {
		t.Fatalf("expected oversold positive-sentiment signal to produce an order")
	}
	if order.Side != message.SideLong || order.Asset != "BTC/USDT" {
		t.Fatalf("unexpected order: %+v", order)
	}

	sizer := risk.Sizer{Capital: 10000, RiskPerTrade: 0.01, Entry: 100, StopLoss: 95, TakeProfit: 110}
	sized := sizer.Size(*order)
	if sized.PositionSize != 20 {
		t.Fatalf("expected size 20, got %f", sized.PositionSize)
	}

	report := execution.NewHandler(zerolog.Nop()).Fill(sized)
	if report.Status != message.StatusFilled || report.OrderID == "" {
		t.Fatalf("unexpected execution report: %+v", report)
	}

	update, closed := position.Assess(report, 101)
	if closed || update.Status != message.StatusOpen {
		t.Fatalf("expected position open above entry, got %s", update.Status)
	}

	update, closed = position.Assess(report, 94)
	if !closed || update.Status != message.StatusClosedSL {
		t.Fatalf("expected stop-loss closure, got %s", update.Status)
	}
	if update.PnL != -120 {
		t.Fatalf("expected pnl -120 at 94, got %f", update.PnL)
	}
}
