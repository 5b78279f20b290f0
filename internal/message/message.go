// Package message standardizes the queue payloads shared between pipeline stages.
// Downstream stages parse by field name, so the json tags here are the wire contract.
package message

import "encoding/json"

// Queue names declared durable by every stage that touches them.
const (
	QueueMarketData        = "raw_market_data"
	QueueNewsData          = "raw_news_data"
	QueueSocialData        = "raw_social_data"
	QueueTASignals         = "ta_signals"
	QueueSentimentSignals  = "sentiment_signals"
	QueueAggregatedSignals = "aggregated_signals"
	QueueRawOrders         = "raw_orders"
	QueueSizedOrders       = "risk_checked_orders"
	QueueExecutedOrders    = "executed_orders"
	QueuePositionUpdates   = "position_updates"
)

// Side enumerates order directions carried on order queues.
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Position lifecycle statuses.
const (
	StatusFilled   = "FILLED"
	StatusOpen     = "OPEN"
	StatusClosedSL = "CLOSED_SL"
	StatusClosedTP = "CLOSED_TP"
)

// Tick is one trade observed on an exchange.
type Tick struct {
	Exchange  string  `json:"exchange"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Timestamp int64   `json:"timestamp"` // milliseconds
}

// NewsItem is one article fetched from the news API.
type NewsItem struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// SocialPost is one submission pulled from the social firehose.
type SocialPost struct {
	Source     string  `json:"source"`
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	CreatedUTC float64 `json:"created_utc"`
	URL        string  `json:"url"`
}

// TASignal is a technical-indicator reading for one symbol.
type TASignal struct {
	Symbol    string  `json:"symbol"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"` // ISO8601
}

// SentimentSignal is a text-sentiment reading for one asset.
type SentimentSignal struct {
	Asset          string  `json:"asset"`
	SentimentScore float64 `json:"sentiment_score"` // [-1, 1]
	Source         string  `json:"source"`
	Timestamp      string  `json:"timestamp"` // ISO8601
}

// AggregatedSignal pairs the latest TA and sentiment readings for one asset.
// The two slots stay raw so the aggregator never depends on their layout.
type AggregatedSignal struct {
	Asset     string          `json:"asset"`
	TA        json.RawMessage `json:"ta"`
	Sentiment json.RawMessage `json:"sentiment"`
	Timestamp float64         `json:"timestamp"` // epoch seconds
}

// Order is a raw trade intent emitted by the strategy stage.
type Order struct {
	Asset     string  `json:"asset"`
	Side      string  `json:"side"`
	Reason    string  `json:"reason"`
	Timestamp float64 `json:"timestamp"`
}

// SizedOrder is an order after risk sizing.
type SizedOrder struct {
	Order
	PositionSize float64 `json:"position_size"`
	Entry        float64 `json:"entry"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit   float64 `json:"take_profit"`
}

// ExecutionReport is a filled sized order; it doubles as the at-rest
// position record the monitor tracks.
type ExecutionReport struct {
	SizedOrder
	OrderID  string  `json:"order_id,omitempty"`
	Status   string  `json:"status"`
	FillTime float64 `json:"fill_time"` // epoch seconds
}

// PositionUpdate is one monitoring-cycle view of a position.
type PositionUpdate struct {
	ExecutionReport
	CurrentPrice float64 `json:"current_price"`
	PnL          float64 `json:"pnl"`
}
