// Package logging builds the structured loggers shared by service commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog logger writing to stdout at the named level.
func New(level string, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, service)
}

// NewWithWriter returns a JSON slog logger writing to w.
func NewWithWriter(w io.Writer, level string, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(handler)
	if service = strings.TrimSpace(service); service != "" {
		logger = logger.With("service", service)
	}
	return logger
}

// Discard returns a logger that drops every record. Useful for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a case-insensitive level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
