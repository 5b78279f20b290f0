// Package broker wraps the AMQP connection every pipeline stage shares:
// bounded-retry dialing, durable queue declaration, persistent publishing,
// and serialized (prefetch-1) consumption.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ErrConnectFailed marks retry-budget exhaustion. Stages treat it as fatal
// on first-ever startup and as a restartable fault afterwards.
var ErrConnectFailed = errors.New("broker unreachable after retry budget")

const connectAttempts = 5

// Overridable for tests; dialing and sleeping are the slow parts of Connect.
var (
	dial = func(url string) (*amqp.Connection, error) { return amqp.Dial(url) }

	sleep = func(ctx context.Context, d time.Duration) error {
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
)

// Broker is one live connection plus the single channel a stage works on.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker with up to 5 attempts, sleeping 2^n seconds after
// failed attempt n, then declares every named queue durable and sets
// prefetch to one. Declarations are idempotent on the broker side as long as
// durability matches.
func Connect(ctx context.Context, url string, log zerolog.Logger, queues ...string) (*Broker, error) {
	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		b, err := open(url, queues)
		if err == nil {
			return b, nil
		}
		lastErr = err
		log.Error().Err(err).Int("attempt", attempt+1).Msg("broker connection failed")
		if err := sleep(ctx, time.Duration(1<<uint(attempt))*time.Second); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectFailed, lastErr)
}

func open(url string, queues []string) (*Broker, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	for _, queue := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
	}
	if err := ch.Qos(1, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Broker{conn: conn, ch: ch}, nil
}

// Publish sends a message with persistent delivery mode so it survives a
// broker restart until consumed.
func (b *Broker) Publish(ctx context.Context, queue string, body []byte) error {
	return b.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume opens a manually-acknowledged delivery stream for one queue.
// With prefetch 1 the broker hands over at most one unacked message at a
// time, which serializes processing per queue.
func (b *Broker) Consume(queue string) (<-chan amqp.Delivery, error) {
	return b.ch.Consume(queue, "", false, false, false, false, nil)
}

// Close tears down the channel and connection.
func (b *Broker) Close() {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}
