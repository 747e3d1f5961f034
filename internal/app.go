package internal

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailkit/pkg/health"
	"github.com/dmitrymomot/mailkit/pkg/logger"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is an HTTP host that owns a mailer and ties its transport to the
// server lifecycle. App is immutable after New.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	mail                    *mailer.Mailer
	mailAuto                mailer.Auto
	mailLifecycleOpts       []mailer.LifecycleOption
	mailLifecycle           *mailer.Lifecycle
	mailQueue               MailQueue
	middlewares             []Middleware
	handlers                []Handler
}

// New creates a new application with the given options.
//
// Example:
//
//	app := mailkit.New(
//	    mailkit.WithLogger(log),
//	    mailkit.WithMail(m, cfg.Auto),
//	    mailkit.WithHandlers(handlers.NewSignup(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.mail != nil {
		opts := append([]mailer.LifecycleOption{mailer.WithLifecycleLogger(a.logger)}, a.mailLifecycleOpts...)
		a.mailLifecycle = mailer.NewLifecycle(a.mail, a.mailAuto, opts...)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Mail returns the application mailer, or nil if WithMail was not used.
// It is the same instance handlers reach through Context.Mail.
func (a *App) Mail() *mailer.Mailer {
	return a.mail
}

// Run starts the HTTP server and blocks until shutdown.
// With WithMail, the mail startup hook runs before any other startup hook
// and before the listener opens; a failure aborts Run. The mail shutdown hook
// runs after every other shutdown hook. A queue registered with WithMailQueue
// starts right after the mail transport is verified and stops right before
// it is closed. When a later startup hook fails, the queue is stopped and
// the mail shutdown hook runs before Run returns.
//
// Example:
//
//	err := app.Run(":8080", mailkit.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	// acquired holds release hooks of started mail components, newest first.
	var acquired []func(context.Context) error
	track := func(start, release func(context.Context) error) func(context.Context) error {
		return func(ctx context.Context) error {
			if err := start(ctx); err != nil {
				return err
			}
			acquired = append([]func(context.Context) error{release}, acquired...)
			return nil
		}
	}

	var startupHooks []func(context.Context) error
	shutdownHooks := slices.Clone(cfg.shutdownHooks)
	if a.mailLifecycle != nil {
		startupHooks = append(startupHooks, track(a.mailLifecycle.StartupHook(), a.mailLifecycle.ShutdownHook()))
	}
	if a.mailQueue != nil {
		startupHooks = append(startupHooks, track(a.mailQueue.Start, a.mailQueue.Stop))
		shutdownHooks = append(shutdownHooks, a.mailQueue.Stop)
	}
	if a.mailLifecycle != nil {
		shutdownHooks = append(shutdownHooks, a.mailLifecycle.ShutdownHook())
	}
	startupHooks = append(startupHooks, cfg.startupHooks...)
	abort := func(ctx context.Context) error {
		return runHooks(ctx, acquired, log)
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		abortHook:       abort,
		baseCtx:         cfg.baseCtx,
		listening:       cfg.listening,
	})
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.healthConfig != nil {
		checks := make(health.Checks, len(a.healthConfig.checks)+1)
		if a.mail != nil {
			checks["mail"] = a.mail.Healthcheck()
		}
		if a.mailQueue != nil {
			checks["mail_queue"] = a.mailQueue.Healthcheck()
		}
		maps.Copy(checks, a.healthConfig.checks)
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError runs the error handler unless a response was already written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		a.logger.ErrorContext(c, "error handler failed", slog.Any("error", herr))
	}
}
