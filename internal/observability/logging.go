// Package observability threads per-run logging context (run id, pipeline
// stage) through context.Context and logs with it attached.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID  string
	Stage  string
	Config string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// NewRunID returns a fresh identifier for one pipeline invocation.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithConfig records the build descriptor path in the context.
func WithConfig(ctx context.Context, path string) context.Context {
	lc := extractLogContext(ctx)
	lc.Config = path
	return context.WithValue(ctx, logContextKey, lc)
}

// extractLogContext retrieves or creates a LogContext from the context.
func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// getLogAttrs returns slog attributes from the context's LogContext.
func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RunID != "" {
		attrs = append(attrs, slog.String("run.id", lc.RunID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	if lc.Config != "" {
		attrs = append(attrs, slog.String("config", lc.Config))
	}

	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, allAttrs...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
