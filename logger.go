package gaffer

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with graph-specific context.
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

// WithOperation tags every record with an operation id and the calling user.
func (l *Logger) WithOperation(ctx context.Context, op, id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op, "op_id", id, "user", UserFrom(ctx).ID),
	}
}

// WithGraph adds a graph name field to the logger.
func (l *Logger) WithGraph(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("graph", name),
	}
}

// LogAddElements logs an ingest batch.
func (l *Logger) LogAddElements(ctx context.Context, count, skipped int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "add elements failed",
			"count", count,
			"error", err,
		)
	case skipped > 0:
		l.WarnContext(ctx, "add elements skipped invalid elements",
			"total", count,
			"skipped", skipped,
			"stored", count-skipped,
		)
	default:
		l.DebugContext(ctx, "add elements completed",
			"count", count,
		)
	}
}

// LogInvalidElement logs an element dropped by validation.
func (l *Logger) LogInvalidElement(ctx context.Context, group string, err error) {
	l.DebugContext(ctx, "invalid element skipped",
		"group", group,
		"error", err,
	)
}

// LogQuery logs a read operation.
func (l *Logger) LogQuery(ctx context.Context, seeds, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"seeds", seeds,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"seeds", seeds,
			"results", results,
		)
	}
}

// LogFlush logs a bulk writer flush.
func (l *Logger) LogFlush(ctx context.Context, buffered, aggregated int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bulk flush failed",
			"buffered", buffered,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "bulk flush completed",
			"buffered", buffered,
			"aggregated", aggregated,
		)
	}
}

// LogOpen logs a graph opening.
func (l *Logger) LogOpen(ctx context.Context, partitions int, compression string) {
	l.InfoContext(ctx, "graph opened",
		"partitions", partitions,
		"compression", compression,
	)
}
