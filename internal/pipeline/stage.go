package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"tradepipe/internal/broker"
	"tradepipe/internal/metrics"
)

const defaultCoolDown = 10 * time.Second

// Delivery is one received message as seen by a transform.
type Delivery struct {
	Queue string
	Body  []byte
}

// Transform turns one input message into a Result. Transforms own payload
// validation; the runtime never inspects message bodies.
type Transform func(ctx context.Context, d Delivery) Result

// Stage is a consume→transform→produce runtime over one or more input
// queues. Each input queue is consumed serially (prefetch 1), so a
// transform never sees two messages from the same queue concurrently.
type Stage struct {
	Name      string
	BrokerURL string
	Inputs    []string
	Outputs   []string
	Transform Transform
	Log       zerolog.Logger
	CoolDown  time.Duration
}

// Run supervises the stage until the context is canceled: it connects,
// declares, and consumes, and on any loop fault sleeps the cool-down and
// rebuilds everything from scratch. Only a connect failure on the very
// first setup is returned as fatal.
func (s *Stage) Run(ctx context.Context) error {
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
		s.Log.Error().Err(err).Dur("cool_down", cool).Msg("stage fault, restarting")
		select {
		case <-time.After(cool):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Stage) runOnce(ctx context.Context) error {
	queues := make([]string, 0, len(s.Inputs)+len(s.Outputs))
	queues = append(queues, s.Inputs...)
	queues = append(queues, s.Outputs...)

	b, err := broker.Connect(ctx, s.BrokerURL, s.Log, queues...)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, len(s.Inputs))
	for _, queue := range s.Inputs {
		deliveries, err := b.Consume(queue)
		if err != nil {
			return fmt.Errorf("consume %s: %w", queue, err)
		}
		go func(queue string, deliveries <-chan amqp.Delivery) {
			errc <- s.consume(ctx, queue, deliveries, b.Publish)
		}(queue, deliveries)
	}

	s.Log.Info().Strs("inputs", s.Inputs).Msg("consuming")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stage) consume(ctx context.Context, queue string, deliveries <-chan amqp.Delivery, publish publishFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery stream closed for %s", queue)
			}
			s.handle(ctx, queue, d, publish)
		}
	}
}

type publishFunc func(ctx context.Context, queue string, body []byte) error

// handle settles exactly one delivery. The ack is issued only after every
// output has been published persistently; a crash in between can duplicate
// work on redelivery but never lose it.
func (s *Stage) handle(ctx context.Context, queue string, d amqp.Delivery, publish publishFunc) {
	res := s.Transform(ctx, Delivery{Queue: queue, Body: d.Body})
	switch res.kind {
	case kindFailed:
		s.Log.Error().Err(res.err).Str("queue", queue).Msg("message dropped")
		metrics.MessagesDropped.WithLabelValues(queue).Inc()
		_ = d.Nack(false, false)
	case kindFiltered:
		_ = d.Ack(false)
		metrics.MessagesConsumed.WithLabelValues(queue).Inc()
	case kindProcessed:
		for _, out := range res.outputs {
			if err := publish(ctx, out.Queue, out.Body); err != nil {
				s.Log.Error().Err(err).Str("queue", out.Queue).Msg("publish failed, dropping input")
				metrics.MessagesDropped.WithLabelValues(queue).Inc()
				_ = d.Nack(false, false)
				return
			}
			metrics.MessagesPublished.WithLabelValues(out.Queue).Inc()
		}
		_ = d.Ack(false)
		metrics.MessagesConsumed.WithLabelValues(queue).Inc()
	}
}
