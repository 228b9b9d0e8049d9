// Package logging configures the process-wide zerolog logger used by the
// CLI commands. Engine packages never log; they return data and errors.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger writing to stderr. format "json" emits structured
// JSON lines; anything else gets the human console writer. debug drops the
// level from Info to Debug.
func Setup(format string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
