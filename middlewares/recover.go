package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/mailkit/internal"
)

// DefaultStackSize caps the captured stack trace, in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize    int
	disableStack bool
}

// RecoverOption tunes Recover.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize caps the captured stack at size bytes.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack skips stack capture entirely.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disableStack = true
	}
}

// Recover converts a handler panic into a *PanicError for the app
// ErrorHandler. The log record carries the mailer state so a panic during a
// send can be told apart from one before the transport was touched.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r, MailState: mailState(c)}
				attrs := []any{"panic", r}
				if pe.MailState != "" {
					attrs = append(attrs, "mail_state", pe.MailState)
				}
				if !cfg.disableStack {
					stack := make([]byte, cfg.stackSize)
					pe.Stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()

			return next(c)
		}
	}
}
