package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type runIDKey struct{}

type implLogger struct {
	logger *slog.Logger
	level  string
}

// New creates a new Logger instance writing to stdout
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level, "text")
}

// NewWithWriter creates a Logger with the given sink and format ("text" or "json")
func NewWithWriter(w io.Writer, level, format string) Logger {
	level = strings.ToLower(level)
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &implLogger{
		logger: slog.New(h),
		level:  level,
	}
}

// NewNop returns a Logger that discards everything
func NewNop() Logger {
	return NewWithWriter(io.Discard, "error", "text")
}

// WithRunID tags ctx so every line logged with it carries the pipeline run id
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) log(ctx context.Context, level slog.Level, name, msg string, args ...interface{}) {
	if !l.shouldLog(name) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var attrs []any
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		attrs = append(attrs, slog.String("run_id", id))
	}
	l.logger.Log(ctx, level, fmt.Sprintf(msg, args...), attrs...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, "debug", msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, "info", msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, "warn", msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelError, "error", msg, args...)
}
