package main

import (
	"context"
	"encoding/json"
	"os"
	ossignal "os/signal"
	"syscall"

	"tradepipe/internal/config"
	"tradepipe/internal/feed"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("market_data_collector", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("market_data_collector", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stream := feed.NewBinance(cfg.Market.WSBaseURL, cfg.Market.Symbols, log)
	src := &pipeline.Source{
		Name:      "market_data_collector",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueMarketData},
		Log:       log,
		Stream: func(ctx context.Context, emit pipeline.Emit) error {
			return stream.Run(ctx, func(ctx context.Context, tick message.Tick) error {
				body, err := json.Marshal(tick)
				if err != nil {
					return err
				}
				return emit(ctx, pipeline.Outbound{Queue: message.QueueMarketData, Body: body})
			})
		},
	}

	if err := src.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("collector stopped")
	}
	log.Info().Msg("shutting down")
}
