package mailer

import "context"

// Transport is the delivery backend used by Mailer.
// Implementations must be safe for concurrent use and must return
// ErrTransportClosed from every method once Close has been called.
type Transport interface {
	// Verify checks that the backend is reachable and accepts credentials.
	Verify(ctx context.Context) error

	// Send delivers a finalized message.
	Send(ctx context.Context, opts *Options) (*Result, error)

	// Close releases the transport.
	Close() error
}
