package storagekit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with storagekit-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithAllocator tags the logger with an allocator name.
func (l *Logger) WithAllocator(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("allocator", name),
	}
}

// LogAllocate logs a block allocation.
func (l *Logger) LogAllocate(ctx context.Context, elem string, count int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocate failed",
			"elem", elem,
			"count", count,
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "allocate",
		"elem", elem,
		"count", count,
		"bytes", bytes,
	)
}

// LogReallocate logs an in-place reallocation.
func (l *Logger) LogReallocate(ctx context.Context, elem string, oldCount, newCount int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reallocate failed",
			"elem", elem,
			"old", oldCount,
			"new", newCount,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "reallocate",
		"elem", elem,
		"old", oldCount,
		"new", newCount,
	)
}

// LogFree logs the release of a block.
func (l *Logger) LogFree(ctx context.Context, elem string, count int, bytes int64) {
	l.DebugContext(ctx, "free",
		"elem", elem,
		"count", count,
		"bytes", bytes,
	)
}

// LogRejected logs a request refused by a memory budget.
func (l *Logger) LogRejected(ctx context.Context, bytes, used, limit int64) {
	l.WarnContext(ctx, "allocation rejected by budget",
		"bytes", bytes,
		"used", used,
		"limit", limit,
	)
}
