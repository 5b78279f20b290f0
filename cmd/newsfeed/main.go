package main

import (
	"context"
	"encoding/json"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tradepipe/internal/config"
	"tradepipe/internal/feed"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/util"
)

const defaultPollInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("news_collector", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("news_collector", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.News.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	api := feed.NewNewsAPI(cfg.News.BaseURL, config.NewsAPIKey(), cfg.News.Query, log)
	producer := &pipeline.Producer{
		Name:      "news_collector",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueNewsData},
		Interval:  interval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			items, err := api.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			outs := make([]pipeline.Outbound, 0, len(items))
			for _, item := range items {
				body, err := json.Marshal(item)
				if err != nil {
					return nil, err
				}
				outs = append(outs, pipeline.Outbound{Queue: message.QueueNewsData, Body: body})
			}
			return outs, nil
		},
	}

	if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("collector stopped")
	}
	log.Info().Msg("shutting down")
}
