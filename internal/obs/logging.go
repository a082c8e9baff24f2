// Package obs centralizes the structured-logging and metrics conventions
// shared by every Veritas component: zerolog for structured logs,
// Prometheus for counters/histograms.
package obs

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger. format is "json" or "console"; level is
// a zerolog level name ("debug", "info", "warn", "error").
func NewLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w = os.Stdout
	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the given component name.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
