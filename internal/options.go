package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailkit/pkg/health"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger. The mail lifecycle logs through it.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler replaces the default JSON error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithMail registers the application mailer. App.Run verifies its transport
// before serving when auto.Connect is set and closes it after the server
// stops when auto.Destroy is set. Handlers reach it through Context.Mail.
// Run fails with mailer.ErrNoRenderer when m has no view renderer, unless
// mailer.WithoutRenderer is passed.
//
// Example:
//
//	cfg := mailer.MustConfig(settings)
//	mailkit.New(
//	    mailkit.WithMail(m, cfg.Auto),
//	)
func WithMail(m *mailer.Mailer, auto mailer.Auto, opts ...mailer.LifecycleOption) Option {
	return func(a *App) {
		if m == nil {
			return
		}
		a.mail = m
		a.mailAuto = auto
		a.mailLifecycleOpts = opts
	}
}

// MailQueue is an asynchronous delivery queue run alongside the server.
type MailQueue interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Healthcheck() func(context.Context) error
}

// WithMailQueue runs q for the lifetime of App.Run and adds a "mail_queue"
// readiness check.
//
// Example:
//
//	q, err := queue.New(pool, m)
//	mailkit.New(
//	    mailkit.WithMail(m, cfg.Auto),
//	    mailkit.WithMailQueue(q),
//	)
func WithMailQueue(q MailQueue) Option {
	return func(a *App) {
		if q != nil {
			a.mailQueue = q
		}
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. A check named "mail"
// replaces the one registered automatically by WithMail.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
// With WithMail, readiness includes a "mail" check that verifies the transport.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
