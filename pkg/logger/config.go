package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects the log level, output format and optional Sentry sink.
// Format is "json", "text" or "dev" (colored, multi-line output for terminals).
// Field tags follow envconfig conventions so the struct can be embedded in
// an application config.
type Config struct {
	Level             string `envconfig:"LEVEL" default:"info"`
	Format            string `envconfig:"FORMAT" default:"json"`
	SentryDSN         string `envconfig:"SENTRY_DSN"`
	SentryEnvironment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
	// SentryMinLevel is the lowest level stored in Sentry. Errors always create issues.
	SentryMinLevel string `envconfig:"SENTRY_MIN_LEVEL" default:"warn"`
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// An empty string yields slog.LevelInfo.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: invalid level %q", s)
	}
	return level, nil
}
