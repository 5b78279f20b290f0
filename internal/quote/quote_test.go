package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Fatalf("expected slash stripped from symbol, got %s", r.URL.Query().Get("symbol"))
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"64123.50"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	price, err := client.Price(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if price != 64123.50 {
		t.Fatalf("expected 64123.50, got %f", price)
	}
}

func TestPriceErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Price(context.Background(), "BTC/USDT"); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestPriceBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":"not-a-number"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Price(context.Background(), "BTC/USDT"); err == nil {
		t.Fatalf("expected parse error")
	}
}
