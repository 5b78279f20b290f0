package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"tradepipe/internal/config"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/strategy"
	"tradepipe/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("strategy", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("strategy", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rule := strategy.Build(cfg.Strategy.Mode, cfg.Strategy.MaxRSI, cfg.Strategy.MinSentiment)
	log.Info().Str("rule", rule.Name()).Msg("strategy selected")

	stage := &pipeline.Stage{
		Name:      "strategy",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueAggregatedSignals},
		Outputs:   []string{message.QueueRawOrders},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			var agg message.AggregatedSignal
			if err := json.Unmarshal(d.Body, &agg); err != nil {
				return pipeline.Failed(fmt.Errorf("decode aggregated signal: %w", err))
			}
			order := rule.Evaluate(agg)
			if order == nil {
				return pipeline.Filtered()
			}
			body, err := json.Marshal(order)
			if err != nil {
				return pipeline.Failed(err)
			}
			log.Info().Str("asset", order.Asset).Str("side", order.Side).Str("reason", order.Reason).Msg("order generated")
			return pipeline.Processed(pipeline.Outbound{Queue: message.QueueRawOrders, Body: body})
		},
	}

	if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("strategy stopped")
	}
	log.Info().Msg("shutting down")
}
