package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
	"github.com/dmitrymomot/mailkit/pkg/mailer/memory"
)

type routesFunc func(r Router)

func (f routesFunc) Routes(r Router) { f(r) }

var noopRenderer = mailer.RenderFunc(func(context.Context, string, any) (string, error) {
	return "", nil
})

// newMailer returns a mailer with a renderer so startup passes the renderer check.
func newMailer(t mailer.Transport) *mailer.Mailer {
	return mailer.New(t, mailer.WithRenderer(noopRenderer))
}

// runUntilListening runs app and cancels it as soon as the listener is open.
func runUntilListening(t *testing.T, app *App, opts ...RunOption) (bool, error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listened := false
	opts = append(opts,
		WithContext(ctx),
		OnListening(func(net.Addr) {
			listened = true
			cancel()
		}),
	)
	err := app.Run("127.0.0.1:0", opts...)
	return listened, err
}

func TestApp_RunMailLifecycleOrder(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	m := newMailer(tr)
	app := New(WithMail(m, mailer.DefaultAuto()))

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	listened, err := runUntilListening(t, app,
		StartupHook(func(context.Context) error {
			record("startup:" + m.State().String())
			return nil
		}),
		ShutdownHook(func(context.Context) error {
			record("shutdown:" + m.State().String())
			return nil
		}),
	)
	require.NoError(t, err)
	assert.True(t, listened)

	assert.Equal(t, []string{"startup:verified", "shutdown:verified"}, events)
	assert.Equal(t, mailer.StateClosed, m.State())
	assert.Equal(t, 1, tr.Verifications())
	assert.True(t, tr.Closed())
}

type fakeQueue struct {
	mail     *mailer.Mailer
	record   func(string)
	healthy  error
	startErr error
}

func (q *fakeQueue) Start(context.Context) error {
	q.record("queue:start:" + q.mail.State().String())
	return q.startErr
}

func (q *fakeQueue) Stop(context.Context) error {
	q.record("queue:stop:" + q.mail.State().String())
	return nil
}

func (q *fakeQueue) Healthcheck() func(context.Context) error {
	return func(context.Context) error { return q.healthy }
}

func TestApp_RunMailQueueOrder(t *testing.T) {
	t.Parallel()

	m := newMailer(memory.New())

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	app := New(
		WithMail(m, mailer.DefaultAuto()),
		WithMailQueue(&fakeQueue{mail: m, record: record}),
	)

	listened, err := runUntilListening(t, app,
		StartupHook(func(context.Context) error {
			record("startup")
			return nil
		}),
		ShutdownHook(func(context.Context) error {
			record("shutdown")
			return nil
		}),
	)
	require.NoError(t, err)
	assert.True(t, listened)

	assert.Equal(t, []string{
		"queue:start:verified",
		"startup",
		"shutdown",
		"queue:stop:verified",
	}, events)
	assert.Equal(t, mailer.StateClosed, m.State())
}

func TestApp_HealthIncludesMailQueue(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{record: func(string) {}}
	app := New(
		WithMail(newMailer(memory.New()), mailer.DefaultAuto()),
		WithMailQueue(q),
		WithHealthChecks(),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"mail":{"status":"healthy"},"mail_queue":{"status":"healthy"}}}`, rec.Body.String())

	q.healthy = errors.New("river client not started")
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApp_RunAbortsWhenVerifyFails(t *testing.T) {
	t.Parallel()

	verifyErr := errors.New("dial tcp: connection refused")
	tr := memory.New().FailVerify(verifyErr)
	app := New(WithMail(newMailer(tr), mailer.DefaultAuto()))

	laterHook := false
	listened, err := runUntilListening(t, app, StartupHook(func(context.Context) error {
		laterHook = true
		return nil
	}))

	require.ErrorIs(t, err, mailer.ErrConnectionFailed)
	require.ErrorIs(t, err, verifyErr)
	assert.False(t, listened, "server must not accept requests")
	assert.False(t, laterHook)
	assert.False(t, tr.Closed())
}

func TestApp_RunAutoDisabled(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	m := newMailer(tr)
	app := New(WithMail(m, mailer.Auto{}))

	listened, err := runUntilListening(t, app)
	require.NoError(t, err)
	assert.True(t, listened)
	assert.Zero(t, tr.Verifications())
	assert.False(t, tr.Closed())
	assert.Equal(t, mailer.StateReady, m.State())
}

func TestApp_RunShutdownContinuesAfterHookFailure(t *testing.T) {
	t.Parallel()

	hookErr := errors.New("flush failed")
	closeErr := errors.New("quit: broken pipe")
	tr := memory.New().FailClose(closeErr)
	app := New(WithMail(newMailer(tr), mailer.DefaultAuto()))

	_, err := runUntilListening(t, app, ShutdownHook(func(context.Context) error {
		return hookErr
	}))

	require.ErrorIs(t, err, hookErr)
	require.ErrorIs(t, err, closeErr)
	assert.True(t, tr.Closed(), "mail transport closed despite the earlier failure")
}

func TestApp_RunFailsWithoutRenderer(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	app := New(WithMail(mailer.New(tr), mailer.DefaultAuto()))

	listened, err := runUntilListening(t, app)
	require.ErrorIs(t, err, mailer.ErrNoRenderer)
	assert.False(t, listened)
	assert.Zero(t, tr.Verifications())
}

func TestApp_RunWithoutRendererOptOut(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	app := New(WithMail(mailer.New(tr), mailer.DefaultAuto(), mailer.WithoutRenderer()))

	listened, err := runUntilListening(t, app)
	require.NoError(t, err)
	assert.True(t, listened)
	assert.Equal(t, 1, tr.Verifications())
	assert.True(t, tr.Closed())
}

func TestApp_RunStartupFailureReleasesMail(t *testing.T) {
	t.Parallel()

	startErr := errors.New("river: connection refused")
	hookErr := errors.New("warm cache failed")

	tests := []struct {
		name       string
		queueErr   error
		hookErr    error
		wantErr    error
		wantEvents []string
	}{
		{
			name:       "queue start fails",
			queueErr:   startErr,
			wantErr:    startErr,
			wantEvents: []string{"queue:start:verified"},
		},
		{
			name:       "later hook fails",
			hookErr:    hookErr,
			wantErr:    hookErr,
			wantEvents: []string{"queue:start:verified", "queue:stop:verified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				mu     sync.Mutex
				events []string
			)
			record := func(e string) {
				mu.Lock()
				defer mu.Unlock()
				events = append(events, e)
			}

			tr := memory.New()
			m := newMailer(tr)
			app := New(
				WithMail(m, mailer.DefaultAuto()),
				WithMailQueue(&fakeQueue{mail: m, record: record, startErr: tt.queueErr}),
			)

			listened, err := runUntilListening(t, app, StartupHook(func(context.Context) error {
				return tt.hookErr
			}))
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, listened)
			assert.Equal(t, tt.wantEvents, events)
			assert.True(t, tr.Closed(), "verified transport is closed when startup aborts")
			assert.Equal(t, mailer.StateClosed, m.State())
		})
	}
}

func TestApp_RunWithoutMail(t *testing.T) {
	t.Parallel()

	listened, err := runUntilListening(t, New())
	require.NoError(t, err)
	assert.True(t, listened)
	assert.Nil(t, New().Mail())
}

func TestContext_MailIsAppMailer(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	m := newMailer(tr)

	app := New(
		WithMail(m, mailer.DefaultAuto()),
		WithHandlers(routesFunc(func(r Router) {
			r.POST("/invite", func(c Context) error {
				if c.Mail() != m {
					return errors.New("request scope sees a different mailer")
				}
				_, err := c.Mail().Make().To(c.Query("to")).Subject("Invitation").Send(c)
				if err != nil {
					return err
				}
				return c.NoContent(http.StatusAccepted)
			})
		})),
	)
	require.Same(t, m, app.Mail())

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invite?to=guest@example.com", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, tr.Messages(), 1)
	assert.Equal(t, "guest@example.com", tr.Last().To[0].Address)
}

func TestContext_MailSendAfterDestroy(t *testing.T) {
	t.Parallel()

	m := newMailer(memory.New())
	require.NoError(t, m.Destroy(context.Background()))

	app := New(
		WithMail(m, mailer.DefaultAuto()),
		WithHandlers(routesFunc(func(r Router) {
			r.POST("/send", func(c Context) error {
				_, err := c.Mail().Make().To("a@example.com").Send(c)
				if errors.Is(err, mailer.ErrTransportClosed) {
					return c.Error(http.StatusServiceUnavailable, "mail unavailable", WithError(err))
				}
				return err
			})
		})),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"mail unavailable"}`, rec.Body.String())
}

func TestApp_HealthIncludesMail(t *testing.T) {
	t.Parallel()

	tr := memory.New()
	app := New(
		WithMail(newMailer(tr), mailer.DefaultAuto()),
		WithHealthChecks(WithReadinessCheck("db", func(context.Context) error { return nil })),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"db":{"status":"healthy"},"mail":{"status":"healthy"}}}`, rec.Body.String())

	tr.FailVerify(errors.New("timeout"))
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	app := New(WithHandlers(routesFunc(func(r Router) {
		r.GET("/boom", func(c Context) error { return errors.New("boom") })
		r.GET("/missing", func(c Context) error { return c.Error(http.StatusNotFound, "no such view") })
		r.GET("/written", func(c Context) error {
			_ = c.String(http.StatusTeapot, "partial")
			return errors.New("late failure")
		})
	})))

	tests := []struct {
		path string
		code int
		body string
	}{
		{path: "/boom", code: http.StatusInternalServerError, body: `{"error":"Internal Server Error"}` + "\n"},
		{path: "/missing", code: http.StatusNotFound, body: `{"error":"no such view"}` + "\n"},
		{path: "/written", code: http.StatusTeapot, body: "partial"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestRouter_MiddlewareOrderAndValues(t *testing.T) {
	t.Parallel()

	type key struct{}
	var order []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	setValue := func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			c.Set(key{}, "from-middleware")
			return next(c)
		}
	}

	app := New(
		WithMiddleware(mw("global"), setValue),
		WithHandlers(routesFunc(func(r Router) {
			r.Route("/api", func(r Router) {
				r.GET("/{id}", func(c Context) error {
					return c.String(http.StatusOK, c.Param("id")+":"+ContextValue[string](c, key{}))
				}, mw("first"), mw("second"))
			})
		})),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/42", nil))
	assert.Equal(t, "42:from-middleware", rec.Body.String())
	assert.Equal(t, []string{"global", "first", "second"}, order)
}
