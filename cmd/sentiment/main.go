package main

import (
	"context"
	"encoding/json"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"tradepipe/internal/config"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/sentiment"
	"tradepipe/internal/store"
	"tradepipe/internal/util"
)

const (
	defaultInterval = time.Minute
	defaultLookback = 10 * time.Minute
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("sentiment_module", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("sentiment_module", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(cfg.Sentiment.IntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	lookback := time.Duration(cfg.Sentiment.LookbackMins) * time.Minute
	if lookback <= 0 {
		lookback = defaultLookback
	}

	mongo, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect document store")
	}
	defer func() { _ = mongo.Close(context.Background()) }()

	scorer := sentiment.NewScorer(nil)

	score := func(ctx context.Context, collection string) ([]pipeline.Outbound, error) {
		docs, err := mongo.Recent(ctx, collection, time.Now().Add(-lookback))
		if err != nil {
			return nil, err
		}
		var outs []pipeline.Outbound
		for _, doc := range docs {
			text := strings.TrimSpace(doc.Title + " " + doc.Description + " " + doc.Text)
			asset, ok := sentiment.AssetOf(text)
			if !ok {
				continue
			}
			signal := message.SentimentSignal{
				Asset:          asset,
				SentimentScore: scorer.Score(text),
				Source:         doc.Source,
				Timestamp:      time.Now().UTC().Format(time.RFC3339),
			}
			body, err := json.Marshal(signal)
			if err != nil {
				return nil, err
			}
			outs = append(outs, pipeline.Outbound{Queue: message.QueueSentimentSignals, Body: body})
		}
		return outs, nil
	}

	producer := &pipeline.Producer{
		Name:      "sentiment_module",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueSentimentSignals},
		Interval:  interval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			news, err := score(ctx, store.CollectionNews)
			if err != nil {
				return nil, err
			}
			social, err := score(ctx, store.CollectionSocial)
			if err != nil {
				return nil, err
			}
			return append(news, social...), nil
		},
	}

	if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("sentiment module stopped")
	}
	log.Info().Msg("shutting down")
}
