// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Broker holds the message broker connection target.
type Broker struct {
	URL string `yaml:"url"`
}

// Market configures the exchange trade stream the market-data collector subscribes to.
type Market struct {
	WSBaseURL string   `yaml:"ws_base_url"`
	Symbols   []string `yaml:"symbols"`
}

// News configures the news API poller. The API key comes from the
// NEWSAPI_KEY environment variable, never from the file.
type News struct {
	BaseURL          string `yaml:"base_url"`
	Query            string `yaml:"query"`
	PollIntervalSecs int    `yaml:"poll_interval_secs"`
}

// Social configures the social firehose poller.
type Social struct {
	BaseURL          string   `yaml:"base_url"`
	UserAgent        string   `yaml:"user_agent"`
	Keywords         []string `yaml:"keywords"`
	PollIntervalSecs int      `yaml:"poll_interval_secs"`
}

// Mongo points at the document store holding the raw text data lake.
type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Influx points at the time-series store holding price ticks.
type Influx struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// TA tunes the technical-analysis producer loop.
type TA struct {
	Symbol       string `yaml:"symbol"`
	Period       int    `yaml:"period"`
	IntervalSecs int    `yaml:"interval_secs"`
	LookbackMins int    `yaml:"lookback_mins"`
}

// Sentiment tunes the sentiment producer loop.
type Sentiment struct {
	IntervalSecs int `yaml:"interval_secs"`
	LookbackMins int `yaml:"lookback_mins"`
}

// Aggregator tunes the signal aggregation engine.
type Aggregator struct {
	ScanIntervalSecs int `yaml:"scan_interval_secs"`
	StalenessSecs    int `yaml:"staleness_secs"` // 0 disables the staleness check
}

// Strategy selects the entry rule and its thresholds.
type Strategy struct {
	Mode         string  `yaml:"mode"`
	MaxRSI       float64 `yaml:"max_rsi"`
	MinSentiment float64 `yaml:"min_sentiment"`
}

// Risk encodes the fixed capital-at-risk sizing inputs.
type Risk struct {
	Capital      float64 `yaml:"capital"`
	RiskPerTrade float64 `yaml:"risk_per_trade"`
	Entry        float64 `yaml:"entry"`
	StopLoss     float64 `yaml:"stop_loss"`
	TakeProfit   float64 `yaml:"take_profit"`
}

// Monitor configures the position monitor cycle and its quote source.
type Monitor struct {
	PositionsFile    string `yaml:"positions_file"`
	PollIntervalSecs int    `yaml:"poll_interval_secs"`
	QuoteBaseURL     string `yaml:"quote_base_url"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Broker     Broker     `yaml:"broker"`
	Market     Market     `yaml:"market"`
	News       News       `yaml:"news"`
	Social     Social     `yaml:"social"`
	Mongo      Mongo      `yaml:"mongo"`
	Influx     Influx     `yaml:"influx"`
	TA         TA         `yaml:"ta"`
	Sentiment  Sentiment  `yaml:"sentiment"`
	Aggregator Aggregator `yaml:"aggregator"`
	Strategy   Strategy   `yaml:"strategy"`
	Risk       Risk       `yaml:"risk"`
	Monitor    Monitor    `yaml:"monitor"`
}

// Path resolves the config file location. Containers set CONFIG_PATH;
// local runs pick up config.yaml from the working directory.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// NewsAPIKey reads the news API secret from the environment.
func NewsAPIKey() string {
	return os.Getenv("NEWSAPI_KEY")
}

// Load reads a YAML file from disk and hydrates a Config struct.
// A .env file, when present, is folded into the environment first
// so secrets stay out of the YAML.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best-effort

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if url := os.Getenv("BROKER_URL"); url != "" {
		config.Broker.URL = url
	}
	if token := os.Getenv("INFLUXDB_TOKEN"); token != "" {
		config.Influx.Token = token
	}
	return &config, nil
}
