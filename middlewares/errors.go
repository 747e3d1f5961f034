package middlewares

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/mailkit/internal"
)

// PanicError is a handler panic recovered by Recover. A view renderer or
// template that panics mid-send surfaces here.
type PanicError struct {
	Value     any    // recovered value
	Stack     []byte // nil when stack capture is disabled
	MailState string // mailer state when the panic was recovered; empty without a mailer
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError reports a handler cut off by Timeout, typically while a
// synchronous Send was still waiting on the transport.
type TimeoutError struct {
	Duration  time.Duration
	MailState string // mailer state at the deadline; empty without a mailer
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// AsPanicError reports whether err wraps a *PanicError.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

// AsTimeoutError reports whether err wraps a *TimeoutError.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

func mailState(c internal.Context) string {
	if m := c.Mail(); m != nil {
		return m.State().String()
	}
	return ""
}
