package execution

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradepipe/internal/message"
)

func TestFillStampsReport(t *testing.T) {
	handler := NewHandler(zerolog.Nop())
	handler.now = func() time.Time { return time.Unix(1735732800, 0) }
	handler.newID = func() string { return "order-1" }

	order := message.SizedOrder{
		Order:        message.Order{Asset: "BTC/USDT", Side: message.SideLong},
		PositionSize: 20,
		Entry:        100,
		StopLoss:     95,
		TakeProfit:   110,
	}
	report := handler.Fill(order)

	if report.Status != message.StatusFilled {
		t.Fatalf("expected FILLED status, got %s", report.Status)
	}
	if report.FillTime != 1735732800 {
		t.Fatalf("expected fill time 1735732800, got %f", report.FillTime)
	}
	if report.OrderID != "order-1" {
		t.Fatalf("expected injected order id, got %s", report.OrderID)
	}
	if report.PositionSize != 20 || report.Entry != 100 {
		t.Fatalf("expected sized order fields preserved, got %+v", report)
	}
}
