package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tradepipe/internal/broker"
	"tradepipe/internal/metrics"
)

const defaultPollBackoff = 10 * time.Second

// Producer is the runtime for stages with no input queue. Each cycle it
// calls Poll, publishes whatever came back, and sleeps the interval. A poll
// fault sleeps the longer backoff and re-enters the loop without exiting.
type Producer struct {
	Name      string
	BrokerURL string
	Queues    []string
	Interval  time.Duration
	Backoff   time.Duration
	Poll      func(ctx context.Context) ([]Outbound, error)
	Log       zerolog.Logger
	CoolDown  time.Duration
}

// Run supervises the producer the same way Stage.Run supervises consumers:
// a publish fault tears the connection down, cools off, and reconnects.
func (p *Producer) Run(ctx context.Context) error {
	cool := p.CoolDown
	if cool <= 0 {
		cool = defaultCoolDown
	}
	first := true
	for {
		err := p.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if first && errors.Is(err, broker.ErrConnectFailed) {
			return err
		}
		first = false
		p.Log.Error().Err(err).Dur("cool_down", cool).Msg("producer fault, restarting")
		select {
		case <-time.After(cool):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Producer) runOnce(ctx context.Context) error {
	b, err := broker.Connect(ctx, p.BrokerURL, p.Log, p.Queues...)
	if err != nil {
		return err
	}
	defer b.Close()

	backoff := p.Backoff
	if backoff <= 0 {
		backoff = defaultPollBackoff
	}

	for {
		wait := p.Interval
		outs, err := p.Poll(ctx)
		if err != nil {
			p.Log.Error().Err(err).Msg("poll failed")
			wait = backoff
		} else {
			for _, out := range outs {
				if err := b.Publish(ctx, out.Queue, out.Body); err != nil {
					return err
				}
				metrics.MessagesPublished.WithLabelValues(out.Queue).Inc()
			}
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Emit publishes one message on behalf of a stream callback.
type Emit func(ctx context.Context, out Outbound) error

// Source is the runtime for stages fed by a push stream (a websocket)
// rather than a timer. Stream should run until it fails; the supervisor
// handles cool-down and reconnection.
type Source struct {
	Name      string
	BrokerURL string
	Queues    []string
	Stream    func(ctx context.Context, emit Emit) error
	Log       zerolog.Logger
	CoolDown  time.Duration
}

// Run supervises the stream with the shared connect/cool-down/restart policy.
func (s *Source) Run(ctx context.Context) error {
	cool := s.CoolDown
	if cool <= 0 {
		cool = defaultCoolDown
	}
	first := true
	for {
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if first && errors.Is(err, broker.ErrConnectFailed) {
			return err
		}
		first = false
		s.Log.Error().Err(err).Dur("cool_down", cool).Msg("source fault, restarting")
		select {
		case <-time.After(cool):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Source) runOnce(ctx context.Context) error {
	b, err := broker.Connect(ctx, s.BrokerURL, s.Log, s.Queues...)
	if err != nil {
		return err
	}
	defer b.Close()

	emit := func(ctx context.Context, out Outbound) error {
		if err := b.Publish(ctx, out.Queue, out.Body); err != nil {
			return err
		}
		metrics.MessagesPublished.WithLabelValues(out.Queue).Inc()
		return nil
	}
	return s.Stream(ctx, emit)
}
