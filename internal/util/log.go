// Package util holds small helpers shared by every stage binary.
package util

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the stage logger. Every pipeline process tags its events
// with a service name so interleaved container logs stay attributable.
func NewLogger(service, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger().Level(lvl)
}
