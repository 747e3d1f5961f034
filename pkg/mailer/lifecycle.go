package mailer

import (
	"context"
	"log/slog"
)

// Auto controls which transport lifecycle steps run with the host.
type Auto struct {
	Connect bool // Verify the transport before the host starts serving
	Destroy bool // Close the transport after the host stops
}

// DefaultAuto returns the default policy: connect and destroy.
func DefaultAuto() Auto {
	return Auto{Connect: true, Destroy: true}
}

// Lifecycle binds a Mailer's transport to host startup and shutdown.
type Lifecycle struct {
	mailer            *Mailer
	logger            *slog.Logger
	auto              Auto
	skipRendererCheck bool
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithoutRenderer lets Startup succeed when the Mailer has no view renderer.
// Messages that call View then fail at send time with ErrNoRenderer.
func WithoutRenderer() LifecycleOption {
	return func(l *Lifecycle) {
		l.skipRendererCheck = true
	}
}

// WithLifecycleLogger sets the lifecycle logger. Defaults to the Mailer's logger.
func WithLifecycleLogger(log *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLifecycle creates a lifecycle coordinator for m.
// Startup fails with ErrNoRenderer unless m has a view renderer, even when
// no message ever uses a view. See WithoutRenderer.
func NewLifecycle(m *Mailer, auto Auto, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		mailer: m,
		auto:   auto,
		logger: m.logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Auto returns the configured policy.
func (l *Lifecycle) Auto() Auto {
	return l.auto
}

// Startup runs before the host starts serving.
// A returned error must abort host startup.
func (l *Lifecycle) Startup(ctx context.Context) error {
	if !l.skipRendererCheck && !l.mailer.HasRenderer() {
		return ErrNoRenderer
	}
	if !l.auto.Connect {
		return nil
	}
	if err := l.mailer.Connect(ctx); err != nil {
		l.logger.ErrorContext(ctx, "mail transport verification failed", slog.String("error", err.Error()))
		return err
	}
	l.logger.InfoContext(ctx, "mail transport connected")
	return nil
}

// Shutdown runs after the host stops serving.
// The close is attempted once; its error is returned for the host to report.
func (l *Lifecycle) Shutdown(ctx context.Context) error {
	if !l.auto.Destroy {
		return nil
	}
	if err := l.mailer.Destroy(ctx); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "mail transport destroyed")
	return nil
}

// StartupHook returns Startup as a host startup hook.
func (l *Lifecycle) StartupHook() func(context.Context) error {
	return l.Startup
}

// ShutdownHook returns Shutdown as a host shutdown hook.
func (l *Lifecycle) ShutdownHook() func(context.Context) error {
	return l.Shutdown
}
