package store

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"tradepipe/internal/message"
)

const tickMeasurement = "price_tick"

// Influx is the time-series store holding the price tick history the
// technical-analysis stage reads back.
type Influx struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	query  api.QueryAPI
	org    string
	bucket string
}

// NewInflux builds a client for the given bucket.
func NewInflux(url, token, org, bucket string) *Influx {
	client := influxdb2.NewClient(url, token)
	return &Influx{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
		query:  client.QueryAPI(org),
		org:    org,
		bucket: bucket,
	}
}

// WriteTick persists one trade as a point tagged by exchange and symbol.
func (i *Influx) WriteTick(ctx context.Context, tick message.Tick) error {
	point := influxdb2.NewPoint(
		tickMeasurement,
		map[string]string{
			"exchange": tick.Exchange,
			"symbol":   tick.Symbol,
		},
		map[string]any{
			"price":    tick.Price,
			"quantity": tick.Quantity,
		},
		time.UnixMilli(tick.Timestamp),
	)
	if err := i.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write tick %s: %w", tick.Symbol, err)
	}
	return nil
}

// PriceSeries returns the symbol's prices over the lookback window in
// time order, oldest first.
func (i *Influx) PriceSeries(ctx context.Context, symbol string, lookback time.Duration) ([]float64, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -%ds)
  |> filter(fn: (r) => r._measurement == %q and r._field == "price" and r.symbol == %q)
  |> sort(columns: ["_time"])`,
		i.bucket, int(lookback.Seconds()), tickMeasurement, symbol)

	result, err := i.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query price series %s: %w", symbol, err)
	}
	defer result.Close()

	var prices []float64
	for result.Next() {
		if v, ok := result.Record().Value().(float64); ok {
			prices = append(prices, v)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("iterate price series %s: %w", symbol, result.Err())
	}
	return prices, nil
}

// Close shuts the underlying client down.
func (i *Influx) Close() {
	i.client.Close()
}
