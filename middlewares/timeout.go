package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/mailkit/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout bounds handler execution. The handler's context carries the
// deadline, so a Send made through c is canceled with it. When the deadline
// passes first, a *TimeoutError is returned.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.SetContext(ctx)

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			var err error
			select {
			case err = <-done:
				if err == nil {
					return nil
				}
			case <-ctx.Done():
				err = ctx.Err()
			}

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				te := &TimeoutError{Duration: timeout, MailState: mailState(c)}
				c.LogError("request timeout", "timeout", timeout.String(), "mail_state", te.MailState)
				return te
			}
			return err
		}
	}
}
