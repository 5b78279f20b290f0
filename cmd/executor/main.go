package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"tradepipe/internal/config"
	"tradepipe/internal/execution"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("execution_handler", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("execution_handler", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	handler := execution.NewHandler(log)

	stage := &pipeline.Stage{
		Name:      "execution_handler",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueSizedOrders},
		Outputs:   []string{message.QueueExecutedOrders},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			var sized message.SizedOrder
			if err := json.Unmarshal(d.Body, &sized); err != nil {
				return pipeline.Failed(fmt.Errorf("decode sized order: %w", err))
			}
			report := handler.Fill(sized)
			body, err := json.Marshal(report)
			if err != nil {
				return pipeline.Failed(err)
			}
			return pipeline.Processed(pipeline.Outbound{Queue: message.QueueExecutedOrders, Body: body})
		},
	}

	if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("execution handler stopped")
	}
	log.Info().Msg("shutting down")
}
