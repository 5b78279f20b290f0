package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger("ta", "debug")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger = NewLogger("ta", "invalid")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", logger.GetLevel())
	}
}

func TestNewLoggerServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("aggregator", "info").Output(&buf)
	logger.Info().Msg("up")
	if !strings.Contains(buf.String(), `"service":"aggregator"`) {
		t.Fatalf("expected service field in output, got %s", buf.String())
	}
}
