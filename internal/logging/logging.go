// Package logging builds the process slog.Logger from internal/config.LoggingConfig,
// using log/slog with structured key-value pairs.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/airbusgeo/imagefusion/internal/config"
)

// New builds a *slog.Logger for the given logging config. Unknown levels fall back
// to Info; unknown formats fall back to text.
func New(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
