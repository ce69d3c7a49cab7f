// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"blog-platform/internal/handler/http/requestid"
	authservice "blog-platform/internal/service/auth"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New creates a logger writing to w. Source locations are added when
// level is warn or lower.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}
	if format == FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewLogger creates a JSON logger on stdout.
func NewLogger(level slog.Level) *slog.Logger {
	return New(os.Stdout, level, FormatJSON)
}

// NewTextLogger creates a human readable logger on stdout for local development.
func NewTextLogger(level slog.Level) *slog.Logger {
	return New(os.Stdout, level, FormatText)
}

// WithRequestID returns a logger carrying the request id and, for logged in
// requests, the user id found in ctx.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := requestid.FromContext(ctx); reqID != "" {
		logger = logger.With(slog.String("request_id", reqID))
	}
	if uid := authservice.UserID(ctx); uid != 0 {
		logger = logger.With(slog.Int64("user_id", uid))
	}
	return logger
}
