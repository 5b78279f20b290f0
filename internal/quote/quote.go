// Package quote fetches spot prices from the exchange ticker endpoint.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.binance.com"

// Client is a thin HTTP client for price-by-symbol lookups. A stalled
// endpoint is bounded by the client timeout; callers treat errors as
// skip-this-item, not fatal.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient builds a client with a 5 second timeout.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		Base: strings.TrimSuffix(base, "/"),
		HTTP: &http.Client{Timeout: 5 * time.Second},
	}
}

type tickerResponse struct {
	Price string `json:"price"`
}

// Price resolves an asset like "BTC/USDT" to its current ticker price.
func (c *Client) Price(ctx context.Context, asset string) (float64, error) {
	symbol := strings.ToUpper(strings.ReplaceAll(asset, "/", ""))
	q := url.Values{}
	q.Set("symbol", symbol)
	u := c.Base + "/api/v3/ticker/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ticker status %d for %s", resp.StatusCode, symbol)
	}
	var out tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(out.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", out.Price, err)
	}
	return price, nil
}
