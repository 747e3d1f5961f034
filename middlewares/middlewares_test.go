package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/internal"
	"github.com/dmitrymomot/mailkit/middlewares"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
	"github.com/dmitrymomot/mailkit/pkg/mailer/memory"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithMiddleware(middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" }))),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				return c.String(http.StatusOK, middlewares.GetRequestID(c))
			})
		})),
	)

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "generated", rec.Body.String())
	assert.Equal(t, "generated", rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "upstream")
	rec = serve(t, app, req)
	assert.Equal(t, "upstream", rec.Body.String())
}

func TestRequestID_DefaultGeneratorIsUUID(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithMiddleware(middlewares.RequestID()),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error { return c.NoContent(http.StatusNoContent) })
		})),
	)

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var attr string
	app := internal.New(
		internal.WithMiddleware(middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "abc" }))),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				a, ok := middlewares.RequestIDExtractor()(c)
				if ok {
					attr = a.Key + "=" + a.Value.String()
				}
				return c.NoContent(http.StatusOK)
			})
		})),
	)

	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "request_id=abc", attr)

	_, ok := middlewares.RequestIDExtractor()(context.Background())
	assert.False(t, ok)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var handled error
	app := internal.New(
		internal.WithMiddleware(middlewares.Recover()),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return c.String(http.StatusInternalServerError, "recovered")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(internal.Context) error { panic("template exploded") })
		})),
	)

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	pe, ok := middlewares.AsPanicError(handled)
	require.True(t, ok)
	assert.Equal(t, "template exploded", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, "panic: template exploded", pe.Error())
}

func TestRecover_DisableStack(t *testing.T) {
	t.Parallel()

	var handled error
	app := internal.New(
		internal.WithMiddleware(middlewares.Recover(middlewares.WithRecoverDisablePrintStack())),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return c.NoContent(http.StatusInternalServerError)
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(internal.Context) error { panic(42) })
		})),
	)

	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	pe, ok := middlewares.AsPanicError(handled)
	require.True(t, ok)
	assert.Nil(t, pe.Stack)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	var handled error
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return c.NoContent(http.StatusGatewayTimeout)
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/slow", func(c internal.Context) error {
				<-c.Done()
				return c.Err()
			}, middlewares.Timeout(10*time.Millisecond))
			r.GET("/fast", func(c internal.Context) error {
				if _, ok := c.Deadline(); !ok {
					return c.NoContent(http.StatusInternalServerError)
				}
				return c.NoContent(http.StatusOK)
			}, middlewares.Timeout(time.Second))
		})),
	)

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	te, ok := middlewares.AsTimeoutError(handled)
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, te.Duration)

	rec = serve(t, app, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrors_MailState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		mail bool
		want string
	}{
		{name: "panic without mailer", path: "/panic", want: ""},
		{name: "panic with mailer", path: "/panic", mail: true, want: "ready"},
		{name: "timeout without mailer", path: "/slow", want: ""},
		{name: "timeout with mailer", path: "/slow", mail: true, want: "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var handled error
			opts := []internal.Option{
				internal.WithMiddleware(middlewares.Recover(middlewares.WithRecoverStackSize(512))),
				internal.WithErrorHandler(func(c internal.Context, err error) error {
					handled = err
					return c.NoContent(http.StatusInternalServerError)
				}),
				internal.WithHandlers(routes(func(r internal.Router) {
					r.GET("/panic", func(internal.Context) error { panic("render failed") })
					r.GET("/slow", func(c internal.Context) error {
						<-c.Done()
						return c.Err()
					}, middlewares.Timeout(10*time.Millisecond))
				})),
			}
			if tt.mail {
				opts = append(opts, internal.WithMail(mailer.New(memory.New()), mailer.Auto{}))
			}
			app := internal.New(opts...)

			serve(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if pe, ok := middlewares.AsPanicError(handled); ok {
				assert.Equal(t, tt.want, pe.MailState)
				assert.LessOrEqual(t, len(pe.Stack), 512)
				return
			}
			te, ok := middlewares.AsTimeoutError(handled)
			require.True(t, ok)
			assert.Equal(t, tt.want, te.MailState)
		})
	}
}
