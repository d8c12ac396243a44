// Package logging sets up log/slog for the server and the CLI.
//
// Loggers obtained through FromContext carry the chi request id, so every
// entry written while serving one request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Setup installs the default logger, writing to stdout.
//
// level is one of debug, info, warn or error (anything else is info).
// format "json" selects the JSON handler; any other value selects text.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger on w without changing the default logger.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// FromContext returns the default logger, tagged with request_id when ctx
// came through chi's RequestID middleware.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("document sniffed", "bytes", n)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}

// WithFields is FromContext plus extra attributes for a multi-step
// operation such as an ingest.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
