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
	"tradepipe/internal/store"
	"tradepipe/internal/ta"
	"tradepipe/internal/util"
)

const (
	defaultPeriod   = 14
	defaultInterval = time.Minute
	defaultLookback = 60 * time.Minute
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("ta_module", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("ta_module", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	period := cfg.TA.Period
	if period <= 0 {
		period = defaultPeriod
	}
	interval := time.Duration(cfg.TA.IntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	lookback := time.Duration(cfg.TA.LookbackMins) * time.Minute
	if lookback <= 0 {
		lookback = defaultLookback
	}

	influx := store.NewInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
	defer influx.Close()

	// Ticks are tagged with the exchange symbol (BTCUSDT); signals carry
	// the asset name (BTC/USDT) the aggregator keys on.
	exchangeSymbol := strings.ToUpper(strings.ReplaceAll(cfg.TA.Symbol, "/", ""))

	producer := &pipeline.Producer{
		Name:      "ta_module",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueTASignals},
		Interval:  interval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			prices, err := influx.PriceSeries(ctx, exchangeSymbol, lookback)
			if err != nil {
				return nil, err
			}
			value, ok := ta.RSI(prices, period)
			if !ok {
				log.Debug().Int("points", len(prices)).Msg("not enough data for rsi")
				return nil, nil
			}
			signal := message.TASignal{
				Symbol:    cfg.TA.Symbol,
				Indicator: "RSI",
				Value:     value,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			body, err := json.Marshal(signal)
			if err != nil {
				return nil, err
			}
			log.Info().Float64("rsi", value).Str("symbol", cfg.TA.Symbol).Msg("indicator computed")
			return []pipeline.Outbound{{Queue: message.QueueTASignals, Body: body}}, nil
		},
	}

	if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("ta module stopped")
	}
	log.Info().Msg("shutting down")
}
