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

const defaultPollInterval = time.Minute

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("social_collector", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("social_collector", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.Social.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	firehose := feed.NewReddit(cfg.Social.BaseURL, cfg.Social.UserAgent, cfg.Social.Keywords, log)
	producer := &pipeline.Producer{
		Name:      "social_collector",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueSocialData},
		Interval:  interval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			posts, err := firehose.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			outs := make([]pipeline.Outbound, 0, len(posts))
			for _, post := range posts {
				body, err := json.Marshal(post)
				if err != nil {
					return nil, err
				}
				outs = append(outs, pipeline.Outbound{Queue: message.QueueSocialData, Body: body})
			}
			return outs, nil
		},
	}

	if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("collector stopped")
	}
	log.Info().Msg("shutting down")
}
