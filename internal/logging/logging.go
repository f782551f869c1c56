// Package logging configures the process-wide structured logger. It is
// called once at startup and everything downstream just uses the
// top-level slog.Info/Warn/Error functions against the default logger.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/s2ungeda/kac/internal/config"
)

// New builds a slog.Logger from the Logging section of cfg and installs
// it as the process default, returning it for callers that want to hold
// their own reference (e.g. to derive a child logger with fixed attrs).
func New(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "", "info":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
