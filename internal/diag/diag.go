// Package diag provides the process-wide diagnostics sink used for informational and
// warning messages that do not affect correctness (color-table interpretation notices,
// open-interval-on-floats coercion, neighbor-count clamping). It is modeled on godal's
// own pluggable ErrorHandler registry, but routes messages to structured logging
// instead of turning them into errors.
package diag

import (
	"log/slog"
	"sync"
)

// Sink receives diagnostic messages. Implementations must be safe for concurrent use.
type Sink interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type slogSink struct {
	logger *slog.Logger
}

func (s slogSink) Info(msg string, args ...any) { s.logger.Info(msg, args...) }
func (s slogSink) Warn(msg string, args ...any) { s.logger.Warn(msg, args...) }

var (
	mu      sync.RWMutex
	current Sink = slogSink{logger: slog.Default()}
)

// SetSink overrides the process-wide diagnostics sink. Passing nil restores the
// default slog-backed sink.
func SetSink(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	if s == nil {
		current = slogSink{logger: slog.Default()}
		return
	}
	current = s
}

func get() Sink {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Infof emits an informational diagnostic.
func Infof(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warnf emits a warning diagnostic. No diagnostic is required for correctness; the
// pixel core and fusors continue processing after emitting one.
func Warnf(msg string, args ...any) {
	get().Warn(msg, args...)
}
