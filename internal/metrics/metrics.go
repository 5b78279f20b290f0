// Package metrics exposes the prometheus collectors shared by every stage.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_messages_consumed_total", Help: "Messages acknowledged per queue"},
		[]string{"queue"},
	)
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_messages_published_total", Help: "Messages published per queue"},
		[]string{"queue"},
	)
	MessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_messages_dropped_total", Help: "Messages rejected without requeue per queue"},
		[]string{"queue"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders emitted by the strategy stage"},
		[]string{"asset", "side"},
	)
	PositionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "positions_closed_total", Help: "Positions closed by the monitor"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(MessagesConsumed, MessagesPublished, MessagesDropped, OrdersTotal, PositionsClosed)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
