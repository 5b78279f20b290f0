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
	"tradepipe/internal/risk"
	"tradepipe/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("risk_manager", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("risk_manager", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sizer := risk.Sizer{
		Capital:      cfg.Risk.Capital,
		RiskPerTrade: cfg.Risk.RiskPerTrade,
		Entry:        cfg.Risk.Entry,
		StopLoss:     cfg.Risk.StopLoss,
		TakeProfit:   cfg.Risk.TakeProfit,
	}

	stage := &pipeline.Stage{
		Name:      "risk_manager",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueRawOrders},
		Outputs:   []string{message.QueueSizedOrders},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			var order message.Order
			if err := json.Unmarshal(d.Body, &order); err != nil {
				return pipeline.Failed(fmt.Errorf("decode order: %w", err))
			}
			sized := sizer.Size(order)
			body, err := json.Marshal(sized)
			if err != nil {
				return pipeline.Failed(err)
			}
			log.Info().Str("asset", sized.Asset).Float64("size", sized.PositionSize).Msg("order sized")
			return pipeline.Processed(pipeline.Outbound{Queue: message.QueueSizedOrders, Body: body})
		},
	}

	if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("risk manager stopped")
	}
	log.Info().Msg("shutting down")
}
