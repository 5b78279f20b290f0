// Package feed hosts the external data collectors: the exchange trade
// stream and the HTTP pollers for news and social posts.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradepipe/internal/message"
)

const defaultWSBaseURL = "wss://stream.binance.com:9443"

// Binance streams live trades from the public combined-stream websocket.
type Binance struct {
	baseURL string
	symbols []string
	log     zerolog.Logger
}

// NewBinance builds a collector for the given symbols.
func NewBinance(baseURL string, symbols []string, log zerolog.Logger) *Binance {
	if baseURL == "" {
		baseURL = defaultWSBaseURL
	}
	return &Binance{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		symbols: symbols,
		log:     log,
	}
}

type binanceEnvelope struct {
	Stream string       `json:"stream"`
	Data   binanceTrade `json:"data"`
}

type binanceTrade struct {
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

// Run streams trades as ticks until the context is canceled or emit fails.
// Websocket drops reconnect internally with a growing backoff; only emit
// failures (a broken broker publish) escape to the caller.
func (f *Binance) Run(ctx context.Context, emit func(context.Context, message.Tick) error) error {
	if len(f.symbols) == 0 {
		return fmt.Errorf("binance feed requires at least one symbol")
	}

	streams := make([]string, len(f.symbols))
	for i, sym := range f.symbols {
		streams[i] = strings.ToLower(sym) + "@trade"
	}
	url := fmt.Sprintf("%s/stream?streams=%s", f.baseURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := f.consumeStream(ctx, url, emit)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isEmitError(err) {
			return err
		}
		f.log.Warn().Err(err).Msg("binance feed disconnected, retrying")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
	}
}

type emitError struct{ err error }

func (e emitError) Error() string { return e.err.Error() }
func (e emitError) Unwrap() error { return e.err }

func isEmitError(err error) bool {
	_, ok := err.(emitError)
	return ok
}

func (f *Binance) consumeStream(ctx context.Context, url string, emit func(context.Context, message.Tick) error) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Strs("symbols", f.symbols).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		tick, ok := f.decodeTrade(raw)
		if !ok {
			continue
		}
		if err := emit(ctx, tick); err != nil {
			return emitError{err}
		}
	}
}

func (f *Binance) decodeTrade(raw []byte) (message.Tick, bool) {
	var env binanceEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		f.log.Warn().Err(err).Msg("failed to decode binance message")
		return message.Tick{}, false
	}
	px, err := strconv.ParseFloat(env.Data.Price, 64)
	if err != nil {
		f.log.Warn().Err(err).Msg("invalid price from binance")
		return message.Tick{}, false
	}
	qty, err := strconv.ParseFloat(env.Data.Quantity, 64)
	if err != nil {
		f.log.Warn().Err(err).Msg("invalid quantity from binance")
		return message.Tick{}, false
	}
	return message.Tick{
		Exchange:  "binance",
		Symbol:    parseStreamSymbol(env.Stream),
		Price:     px,
		Quantity:  qty,
		Timestamp: env.Data.TradeTime,
	}, true
}

func parseStreamSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
