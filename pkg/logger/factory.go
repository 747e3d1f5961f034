package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/golang-cz/devslog"
)

// New creates a JSON logger writing to stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, "json", slog.LevelInfo), extractors...))
}

// NewFromConfig creates a logger from cfg writing to w.
// When SentryDSN is set, records at or above SentryMinLevel are also
// forwarded to Sentry. A failed Sentry init is logged and skipped.
func NewFromConfig(cfg Config, w io.Writer, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	switch cfg.Format {
	case "", "json", "text", "dev":
	default:
		return nil, fmt.Errorf("logger: invalid format %q", cfg.Format)
	}

	base := newHandler(w, cfg.Format, level)
	if cfg.SentryDSN == "" {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), nil
	}

	minLevel, err := ParseLevel(cfg.SentryMinLevel)
	if err != nil {
		return nil, err
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(base, extractors...)), nil
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   levelsFrom(minLevel),
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newFanout(base, sentryHandler), extractors...)), nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "dev":
		return devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:    opts,
			NewLineAfterLog:   true,
			SortKeys:          true,
			TimeFormat:        "[15:04:05]",
			StringerFormatter: true,
		})
	}
	return slog.NewJSONHandler(w, opts)
}

// levelsFrom lists the standard levels at or above min.
func levelsFrom(min slog.Level) []slog.Level {
	var out []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= min {
			out = append(out, l)
		}
	}
	return out
}
