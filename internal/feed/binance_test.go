package feed

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestDecodeTrade(t *testing.T) {
	f := NewBinance("", []string{"btcusdt"}, zerolog.Nop())

	raw := []byte(`{"stream":"btcusdt@trade","data":{"p":"64000.10","q":"0.5","T":1714564800123}}`)
	tick, ok := f.decodeTrade(raw)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if tick.Exchange != "binance" || tick.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected identity: %+v", tick)
	}
	if tick.Price != 64000.10 || tick.Quantity != 0.5 {
		t.Fatalf("unexpected trade values: %+v", tick)
	}
	if tick.Timestamp != 1714564800123 {
		t.Fatalf("expected millisecond timestamp preserved, got %d", tick.Timestamp)
	}
}

func TestDecodeTradeBadPayloads(t *testing.T) {
	f := NewBinance("", []string{"btcusdt"}, zerolog.Nop())

	for _, raw := range []string{
		`not json`,
		`{"stream":"btcusdt@trade","data":{"p":"oops","q":"0.5","T":1}}`,
		`{"stream":"btcusdt@trade","data":{"p":"1.0","q":"oops","T":1}}`,
	} {
		if _, ok := f.decodeTrade([]byte(raw)); ok {
			t.Fatalf("expected decode failure for %q", raw)
		}
	}
}

func TestParseStreamSymbol(t *testing.T) {
	if got := parseStreamSymbol("ethusdt@trade"); got != "ETHUSDT" {
		t.Fatalf("expected ETHUSDT, got %s", got)
	}
}
