package mmcore

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/mmcore/segment"
)

// Logger wraps slog.Logger with mmcore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSource adds a source name field to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// WithSegment adds a segment index field to the logger.
func (l *Logger) WithSegment(index int) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", index),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a database load.
func (l *Logger) LogLoad(ctx context.Context, name string, size, segments, changed int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "load completed",
		"source", name,
		"bytes", size,
		"segments", segments,
		"changed", changed,
		"duration", d,
	)
}

// LogRecalc logs a segment that has to be processed again.
func (l *Logger) LogRecalc(ctx context.Context, name string, s segment.Segment) {
	l.InfoContext(ctx, "recalc",
		"source", name,
		"segment", s.Index,
		"start", s.Start,
		"end", s.End,
		"fingerprint", s.Fingerprint,
	)
}

// LogUnchanged logs a load whose text matched the previous load.
func (l *Logger) LogUnchanged(ctx context.Context, name string, checksum uint32) {
	l.DebugContext(ctx, "source unchanged",
		"source", name,
		"checksum", checksum,
	)
}

// LogRender logs a render pass.
func (l *Logger) LogRender(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "render failed",
			"source", name,
			"rendered", count,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "render completed",
		"source", name,
		"rendered", count,
	)
}
