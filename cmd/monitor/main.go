package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tradepipe/internal/config"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/position"
	"tradepipe/internal/quote"
	"tradepipe/internal/util"
)

const defaultPollInterval = 30 * time.Second

// The monitor is the sole writer of the positions file. New fills arrive
// over the executed-orders queue instead of being written by the execution
// stage, so the append path and the poll cycle share one in-process lock.
func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("position_monitor", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("position_monitor", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.Monitor.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	book := position.NewStore(cfg.Monitor.PositionsFile)
	quotes := quote.NewClient(cfg.Monitor.QuoteBaseURL)

	intake := &pipeline.Stage{
		Name:      "position_monitor_intake",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueExecutedOrders},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			var report message.ExecutionReport
			if err := json.Unmarshal(d.Body, &report); err != nil {
				return pipeline.Failed(fmt.Errorf("decode execution report: %w", err))
			}
			if err := book.Append(report); err != nil {
				return pipeline.Failed(err)
			}
			log.Info().Str("order_id", report.OrderID).Str("asset", report.Asset).Msg("position opened")
			return pipeline.Filtered()
		},
	}

	cycle := &pipeline.Producer{
		Name:      "position_monitor",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueuePositionUpdates},
		Interval:  interval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			positions, err := book.Load()
			if err != nil {
				return nil, err
			}

			// Quote fetches run on this snapshot; removal goes through
			// book.Update keyed by order id, so a fill the intake stage
			// appends mid-cycle survives the cycle's write.
			var outs []pipeline.Outbound
			closed := make(map[string]bool)
			for _, pos := range positions {
				price, err := quotes.Price(ctx, pos.Asset)
				if err != nil {
					log.Warn().Err(err).Str("asset", pos.Asset).Msg("price fetch failed, keeping position")
					continue
				}

				update, done := position.Assess(pos, price)
				body, err := json.Marshal(update)
				if err != nil {
					return nil, err
				}
				outs = append(outs, pipeline.Outbound{Queue: message.QueuePositionUpdates, Body: body})

				if done {
					closed[pos.OrderID] = true
					metrics.PositionsClosed.WithLabelValues(update.Status).Inc()
					log.Info().
						Str("order_id", pos.OrderID).
						Str("status", update.Status).
						Float64("pnl", update.PnL).
						Msg("position closed")
				}
			}

			if len(closed) > 0 {
				err := book.Update(func(current []message.ExecutionReport) []message.ExecutionReport {
					open := current[:0]
					for _, pos := range current {
						if !closed[pos.OrderID] {
							open = append(open, pos)
						}
					}
					return open
				})
				if err != nil {
					return nil, err
				}
			}
			return outs, nil
		},
	}

	errc := make(chan error, 2)
	go func() { errc <- intake.Run(ctx) }()
	go func() { errc <- cycle.Run(ctx) }()

	select {
	case err := <-errc:
		if ctx.Err() == nil {
			log.Fatal().Err(err).Msg("monitor stopped")
		}
	case <-ctx.Done():
	}
	cancel()
	log.Info().Msg("shutting down")
}
