package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
)

// LogLevel reads the level from LOG_LEVEL: DEBUG, INFO, WARN or ERROR.
// Defaults to WARN so that normal runs only print results.
func LogLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the CLI logger writing to w.
//
// The format is chosen by LOG_FORMAT:
//   - "text" (default) for humans
//   - "json" for machine consumption
func NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: LogLevel() == slog.LevelDebug,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// LogrFrom adapts an slog logger for the deserializer. logr's V(1) maps to
// slog level -1, so deserializer events show up at DEBUG.
func LogrFrom(logger *slog.Logger) logr.Logger {
	return logr.FromSlogHandler(logger.Handler())
}
