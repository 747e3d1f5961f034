package mailer

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/dmitrymomot/mailkit/pkg/logger"
)

// State is the lifecycle state of the Mailer's transport.
type State int32

// Transport states.
const (
	StateReady    State = iota // Transport created, not verified
	StateVerified              // Transport passed Verify
	StateClosed                // Transport destroyed; terminal
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateVerified:
		return "verified"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Defaults are applied to every message for fields it leaves unset.
type Defaults struct {
	Headers map[string]string
	From    *Address
	ReplyTo *Address
}

// transportHandle boxes the interface so it can live in an atomic.Pointer.
type transportHandle struct {
	transport Transport
}

// Mailer owns the shared transport and creates message builders.
// It is safe for concurrent use; sends are not serialized.
type Mailer struct {
	handle   atomic.Pointer[transportHandle]
	state    atomic.Int32
	renderer ViewRenderer
	logger   *slog.Logger
	defaults Defaults
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithRenderer sets the renderer used by Message.View.
func WithRenderer(r ViewRenderer) Option {
	return func(m *Mailer) {
		m.renderer = r
	}
}

// WithDefaults sets message defaults.
func WithDefaults(d Defaults) Option {
	return func(m *Mailer) {
		m.defaults = d
	}
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Mailer around the given transport.
func New(transport Transport, opts ...Option) *Mailer {
	m := &Mailer{
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if transport != nil {
		m.handle.Store(&transportHandle{transport: transport})
	} else {
		m.state.Store(int32(StateClosed))
	}
	return m
}

// Make returns a new, empty message builder.
func (m *Mailer) Make() *Message {
	return &Message{mailer: m, options: &Options{}}
}

// HasRenderer reports whether a view renderer is configured.
func (m *Mailer) HasRenderer() bool {
	return m.renderer != nil
}

// State returns the current transport state.
func (m *Mailer) State() State {
	return State(m.state.Load())
}

// Connect verifies the transport connection.
func (m *Mailer) Connect(ctx context.Context) error {
	t, err := m.transport()
	if err != nil {
		return err
	}
	if err := t.Verify(ctx); err != nil {
		return errors.Join(ErrConnectionFailed, err)
	}
	m.state.CompareAndSwap(int32(StateReady), int32(StateVerified))
	m.logger.DebugContext(ctx, "mail transport verified")
	return nil
}

// Destroy closes the transport. The Mailer is unusable afterwards and
// every further operation returns ErrTransportClosed.
func (m *Mailer) Destroy(ctx context.Context) error {
	h := m.handle.Swap(nil)
	if h == nil {
		return ErrTransportClosed
	}
	m.state.Store(int32(StateClosed))

	if err := h.transport.Close(); err != nil {
		return err
	}
	m.logger.DebugContext(ctx, "mail transport closed")
	return nil
}

// Healthcheck returns a closure that verifies the transport for readiness probes.
func (m *Mailer) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		t, err := m.transport()
		if err != nil {
			return err
		}
		if err := t.Verify(ctx); err != nil {
			return errors.Join(ErrConnectionFailed, err)
		}
		return nil
	}
}

func (m *Mailer) transport() (Transport, error) {
	h := m.handle.Load()
	if h == nil {
		return nil, ErrTransportClosed
	}
	return h.transport, nil
}

func (m *Mailer) render(ctx context.Context, view string, data any) (string, error) {
	if m.renderer == nil {
		return "", ErrNoRenderer
	}
	html, err := m.renderer.Render(ctx, view, data)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return html, nil
}

func (m *Mailer) applyDefaults(opts *Options) {
	if opts.From == nil && m.defaults.From != nil {
		from := *m.defaults.From
		opts.From = &from
	}
	if opts.ReplyTo == nil && m.defaults.ReplyTo != nil {
		replyTo := *m.defaults.ReplyTo
		opts.ReplyTo = &replyTo
	}
	if len(m.defaults.Headers) > 0 {
		headers := maps.Clone(m.defaults.Headers)
		maps.Copy(headers, opts.Headers)
		opts.Headers = headers
	}
}

func (m *Mailer) deliver(ctx context.Context, opts *Options) (*Result, error) {
	t, err := m.transport()
	if err != nil {
		return nil, err
	}

	result, err := t.Send(ctx, opts)
	if err != nil {
		m.logger.WarnContext(ctx, "mail delivery failed",
			slog.Int("recipients", len(opts.Recipients())),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if result == nil {
		result = &Result{}
	}

	m.logger.DebugContext(ctx, "mail delivered",
		slog.String("message_id", result.MessageID),
		slog.Int("recipients", len(opts.Recipients())),
	)
	return result, nil
}
