package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tradepipe/internal/aggregate"
	"tradepipe/internal/config"
	"tradepipe/internal/message"
	"tradepipe/internal/metrics"
	"tradepipe/internal/pipeline"
	"tradepipe/internal/util"
)

const defaultScanInterval = 10 * time.Second

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		boot := util.NewLogger("signal_aggregator", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger("signal_aggregator", cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scanInterval := time.Duration(cfg.Aggregator.ScanIntervalSecs) * time.Second
	if scanInterval <= 0 {
		scanInterval = defaultScanInterval
	}
	staleness := time.Duration(cfg.Aggregator.StalenessSecs) * time.Second

	engine := aggregate.NewEngine(staleness)

	// Consumer half: fold both signal streams into the engine.
	stage := &pipeline.Stage{
		Name:      "signal_aggregator",
		BrokerURL: cfg.Broker.URL,
		Inputs:    []string{message.QueueTASignals, message.QueueSentimentSignals},
		Log:       log,
		Transform: func(ctx context.Context, d pipeline.Delivery) pipeline.Result {
			switch d.Queue {
			case message.QueueTASignals:
				var sig message.TASignal
				if err := json.Unmarshal(d.Body, &sig); err != nil {
					return pipeline.Failed(fmt.Errorf("decode ta signal: %w", err))
				}
				if sig.Symbol == "" {
					return pipeline.Failed(fmt.Errorf("ta signal missing symbol"))
				}
				engine.UpdateTA(sig.Symbol, json.RawMessage(d.Body))
			case message.QueueSentimentSignals:
				var sig message.SentimentSignal
				if err := json.Unmarshal(d.Body, &sig); err != nil {
					return pipeline.Failed(fmt.Errorf("decode sentiment signal: %w", err))
				}
				if sig.Asset == "" {
					return pipeline.Failed(fmt.Errorf("sentiment signal missing asset"))
				}
				engine.UpdateSentiment(sig.Asset, json.RawMessage(d.Body))
			default:
				return pipeline.Failed(fmt.Errorf("unexpected queue %s", d.Queue))
			}
			return pipeline.Filtered()
		},
	}

	// Publisher half: every scan emits each complete pair.
	scanner := &pipeline.Producer{
		Name:      "signal_aggregator_scan",
		BrokerURL: cfg.Broker.URL,
		Queues:    []string{message.QueueAggregatedSignals},
		Interval:  scanInterval,
		Log:       log,
		Poll: func(ctx context.Context) ([]pipeline.Outbound, error) {
			combined := engine.Combined()
			outs := make([]pipeline.Outbound, 0, len(combined))
			for _, agg := range combined {
				body, err := json.Marshal(agg)
				if err != nil {
					return nil, err
				}
				outs = append(outs, pipeline.Outbound{Queue: message.QueueAggregatedSignals, Body: body})
			}
			return outs, nil
		},
	}

	errc := make(chan error, 2)
	go func() { errc <- stage.Run(ctx) }()
	go func() { errc <- scanner.Run(ctx) }()

	select {
	case err := <-errc:
		if ctx.Err() == nil {
			log.Fatal().Err(err).Msg("aggregator stopped")
		}
	case <-ctx.Done():
	}
	cancel()
	log.Info().Msg("shutting down")
}
