// Package execution fills risk-checked orders at acceptance time.
package execution

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
)

// Handler converts sized orders into execution reports. Fills are immediate
// and total; there is no exchange round-trip to model here.
type Handler struct {
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewHandler wires a logger-backed fill handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Fill stamps the order FILLED with the current time and a fresh order id.
func (h *Handler) Fill(order message.SizedOrder) message.ExecutionReport {
	report := message.ExecutionReport{
		SizedOrder: order,
		OrderID:    h.newID(),
		Status:     message.StatusFilled,
		FillTime:   float64(h.now().UnixNano()) / float64(time.Second),
	}
	metrics.OrdersTotal.WithLabelValues(order.Asset, order.Side).Inc()
	h.log.Info().
		Str("order_id", report.OrderID).
		Str("asset", order.Asset).
		Str("side", order.Side).
		Float64("size", order.PositionSize).
		Msg("order filled")
	return report
}
