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
		boot := util.NewLogger("text_data_consumer", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("text_data_consumer", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mongo, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect document store")
	}
	defer func() { _ = mongo.Close(context.Background()) }()

	stage := &pipeline.Stage{
		Name:      "text_data_consumer",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueNewsData, message.QueueSocialData},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			switch d.Queue {
			case message.QueueNewsData:
				var item message.NewsItem
				if err := json.Unmarshal(d.Body, &item); err != nil {
					return pipeline.Failed(fmt.Errorf("decode news item: %w", err))
				}
				if err := mongo.Insert(ctx, store.CollectionNews, item); err != nil {
					return pipeline.Failed(err)
				}
			case message.QueueSocialData:
				var post message.SocialPost
				if err := json.Unmarshal(d.Body, &post); err != nil {
					return pipeline.Failed(fmt.Errorf("decode social post: %w", err))
				}
				if err := mongo.Insert(ctx, store.CollectionSocial, post); err != nil {
					return pipeline.Failed(err)
				}
			default:
				return pipeline.Failed(fmt.Errorf("unexpected queue %s", d.Queue))
			}
			return pipeline.Filtered()
		},
	}

	if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("shutting down")
}
