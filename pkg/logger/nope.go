package logger

import "log/slog"

// NewNope returns the logger used when none is configured. Mailers, queues
// and the app all default to it, so nothing is written until WithLogger is set.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
