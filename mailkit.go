package mailkit

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dmitrymomot/mailkit/internal"
	"github.com/dmitrymomot/mailkit/pkg/health"
	"github.com/dmitrymomot/mailkit/pkg/logger"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

// Type aliases - public API
type (
	// App orchestrates the HTTP server and the mail transport lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and the application mailer.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error carrying an HTTP status code.
	HTTPError = internal.HTTPError

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// Mailer is the shared mail facade.
	Mailer = mailer.Mailer

	// MailerOption configures a Mailer.
	MailerOption = mailer.Option

	// Message is a chained builder for a single email.
	Message = mailer.Message

	// Transport delivers messages.
	Transport = mailer.Transport

	// Options is the fully built message handed to a transport.
	Options = mailer.Options

	// Address is an email address with an optional display name.
	Address = mailer.Address

	// Attachment is a file attached to a message.
	Attachment = mailer.Attachment

	// Priority is the message priority.
	Priority = mailer.Priority

	// Result is returned by a successful send.
	Result = mailer.Result

	// Settings is raw, unvalidated mail configuration.
	Settings = mailer.Settings

	// Config is validated mail configuration.
	Config = mailer.Config

	// Auto gates automatic transport verification and close.
	Auto = mailer.Auto

	// Lifecycle ties the transport to host startup and shutdown.
	Lifecycle = mailer.Lifecycle

	// LifecycleOption configures a Lifecycle.
	LifecycleOption = mailer.LifecycleOption

	// ViewRenderer renders a named view into HTML.
	ViewRenderer = mailer.ViewRenderer

	// MailQueue is a background delivery queue started and stopped with the app.
	MailQueue = internal.MailQueue
)

// Priorities
const (
	PriorityHigh   = mailer.PriorityHigh
	PriorityNormal = mailer.PriorityNormal
	PriorityLow    = mailer.PriorityLow
)

// Errors forwarded from pkg/mailer.
var (
	ErrInvalidConfig    = mailer.ErrInvalidConfig
	ErrConnectionFailed = mailer.ErrConnectionFailed
	ErrRenderFailed     = mailer.ErrRenderFailed
	ErrSendFailed       = mailer.ErrSendFailed
	ErrTransportClosed  = mailer.ErrTransportClosed
	ErrNoRenderer       = mailer.ErrNoRenderer
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	m, err := mailkit.NewMailer(cfg, mailkit.WithMailerRenderer(views))
//	if err != nil {
//	    return err
//	}
//
//	app := mailkit.New(
//	    mailkit.WithMail(m, cfg.Auto),
//	    mailkit.WithHandlers(handlers.NewSignup()),
//	)
//
//	err = app.Run(":8080", mailkit.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewLifecycle creates a lifecycle coordinator for m.
// Use it when hosting the mailer outside App.
func NewLifecycle(m *Mailer, auto Auto, opts ...LifecycleOption) *Lifecycle {
	return mailer.NewLifecycle(m, auto, opts...)
}

// NewConfig validates s and applies defaults.
func NewConfig(s Settings) (Config, error) {
	return mailer.NewConfig(s)
}

// LoadConfig reads and validates mail settings from the environment.
// With prefix "MAIL" it reads MAIL_CONNECTION, MAIL_FROM, MAIL_REPLY_TO,
// MAIL_AUTO_CONNECT and MAIL_AUTO_DESTROY.
func LoadConfig(prefix string) (Config, error) {
	s, err := mailer.LoadSettings(prefix)
	if err != nil {
		return Config{}, err
	}
	return mailer.NewConfig(s)
}

// App options

// WithMail registers the application mailer and its lifecycle.
func WithMail(m *Mailer, auto Auto, opts ...LifecycleOption) Option {
	return internal.WithMail(m, auto, opts...)
}

// WithMailQueue registers a background delivery queue. The queue starts
// after the mail transport is verified and stops before it is closed.
// Readiness includes a "mail_queue" check when health checks are enabled.
func WithMailQueue(q MailQueue) Option {
	return internal.WithMailQueue(q)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables liveness and readiness endpoints.
// When a mailer is registered, readiness includes a "mail" check.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health options

// WithLivenessPath sets the liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets the readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Mailer options

// WithMailerRenderer sets the view renderer used by Message.View.
func WithMailerRenderer(r ViewRenderer) MailerOption {
	return mailer.WithRenderer(r)
}

// WithMailerDefaults applies default sender, reply-to and headers to every message.
func WithMailerDefaults(d mailer.Defaults) MailerOption {
	return mailer.WithDefaults(d)
}

// WithMailerLogger sets the mailer logger.
func WithMailerLogger(l *slog.Logger) MailerOption {
	return mailer.WithLogger(l)
}

// WithoutRenderer allows startup without a view renderer. By default a
// mailer without one fails startup with ErrNoRenderer.
func WithoutRenderer() LifecycleOption {
	return mailer.WithoutRenderer()
}

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the graceful shutdown timeout.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server listens.
// A failing hook aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a function run after the server stops.
// Every hook runs even when an earlier one fails.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a base context whose cancellation stops the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// OnListening registers a callback invoked with the bound address.
func OnListening(fn func(net.Addr)) RunOption {
	return internal.OnListening(fn)
}

// Helpers

// ContextValue returns the request value stored under key, or the zero value.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...internal.HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}
