package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with consistent field names for segment work
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewFromConfig builds a Logger from a level name and a format ("text" or "json")
func NewFromConfig(level, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return New(slog.NewJSONHandler(w, opts))
	}
	return New(slog.NewTextHandler(w, opts))
}

// Noop creates a Logger that discards all output
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug/info/warn/error to slog levels, defaulting to info
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

// WithTable adds a table field
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", table),
	}
}

// LogLoad logs a dataset load
func (l *Logger) LogLoad(ctx context.Context, table string, rows int, err error) {
	if err != nil {
		l.WarnContext(ctx, "dataset load failed",
			"table", table,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "dataset loaded",
		"table", table,
		"rows", rows,
	)
}

// LogFilter logs a recompute of the matching records
func (l *Logger) LogFilter(ctx context.Context, table string, conditions, rows, matched int) {
	l.DebugContext(ctx, "filter applied",
		"table", table,
		"conditions", conditions,
		"rows", rows,
		"matched", matched,
	)
}

// LogSegment logs a segment repository operation
func (l *Logger) LogSegment(ctx context.Context, op, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment "+op+" failed",
			"id", id,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "segment "+op,
		"id", id,
	)
}
