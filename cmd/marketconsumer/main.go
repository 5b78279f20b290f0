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
	"tradepipe/internal/store"
	"tradepipe/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("market_data_consumer", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("market_data_consumer", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	influx := store.NewInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
	defer influx.Close()

	stage := &pipeline.Stage{
		Name:      "market_data_consumer",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueMarketData},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			var tick message.Tick
			if err := json.Unmarshal(d.Body, &tick); err != nil {
				return pipeline.Failed(fmt.Errorf("decode tick: %w", err))
			}
			if err := influx.WriteTick(ctx, tick); err != nil {
				return pipeline.Failed(err)
			}
			return pipeline.Filtered()
		},
	}

	if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("shutting down")
}
