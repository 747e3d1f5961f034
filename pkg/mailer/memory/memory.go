// Package memory provides an in-process mailer.Transport that records
// messages instead of delivering them. Use it in tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

var _ mailer.Transport = (*Transport)(nil)

// Transport stores every sent message in memory.
type Transport struct {
	mu        sync.Mutex
	sent      []*mailer.Options
	verifies  int
	closed    bool
	verifyErr error
	sendErr   error
	closeErr  error
}

// New creates an empty memory transport.
func New() *Transport {
	return &Transport{}
}

// FailVerify makes subsequent Verify calls return err. Pass nil to reset.
func (t *Transport) FailVerify(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verifyErr = err
	return t
}

// FailSend makes subsequent Send calls return err. Pass nil to reset.
func (t *Transport) FailSend(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
	return t
}

// FailClose makes Close return err.
func (t *Transport) FailClose(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeErr = err
	return t
}

// Verify implements mailer.Transport.
func (t *Transport) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return mailer.ErrTransportClosed
	}
	t.verifies++
	return t.verifyErr
}

// Send implements mailer.Transport. The stored copy shares nothing with opts.
func (t *Transport) Send(ctx context.Context, opts *mailer.Options) (*mailer.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, mailer.ErrTransportClosed
	}
	if t.sendErr != nil {
		return nil, t.sendErr
	}
	t.sent = append(t.sent, opts.Clone())
	return &mailer.Result{MessageID: uuid.NewString()}, nil
}

// Close implements mailer.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return t.closeErr
}

// Messages returns copies of all recorded messages in send order.
func (t *Transport) Messages() []*mailer.Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*mailer.Options, len(t.sent))
	for i, o := range t.sent {
		out[i] = o.Clone()
	}
	return out
}

// Last returns the most recent message, or nil when nothing was sent.
func (t *Transport) Last() *mailer.Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return nil
	}
	return t.sent[len(t.sent)-1].Clone()
}

// Verifications returns how many times Verify succeeded or failed past the
// closed check.
func (t *Transport) Verifications() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.verifies
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Reset drops recorded messages. Injected errors and the closed flag stay.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}
