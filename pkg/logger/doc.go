// Package logger builds slog loggers with context extraction and optional
// Sentry forwarding.
//
// Context extractors add request-scoped values to every record:
//
//	log := logger.New(logger.StringExtractor(requestIDKey{}, "request_id"))
//	log.InfoContext(ctx, "mail sent", slog.String("message_id", id))
//
// NewFromConfig selects level and format and, when a DSN is configured,
// sends warnings to Sentry as logs and errors as issues:
//
//	log, err := logger.NewFromConfig(logger.Config{
//		Level:     "debug",
//		Format:    "text",
//		SentryDSN: os.Getenv("SENTRY_DSN"),
//	}, os.Stderr)
//
// A failed Sentry init falls back to the local handler.
package logger
