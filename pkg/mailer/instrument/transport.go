// Package instrument decorates a mailer.Transport with Prometheus metrics and
// OpenTelemetry tracing.
package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

const instrumentationName = "github.com/dmitrymomot/mailkit/pkg/mailer"

var _ mailer.Transport = (*Transport)(nil)

// Transport wraps another transport and records every call.
type Transport struct {
	next    mailer.Transport
	name    string
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Transport.
type Option func(*Transport)

// WithName sets the "transport" label and span attribute. Defaults to "default".
func WithName(name string) Option {
	return func(t *Transport) {
		t.name = name
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(t *Transport) {
		t.metrics = m
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Transport) {
		t.tracer = tp.Tracer(instrumentationName)
	}
}

// Wrap decorates next.
func Wrap(next mailer.Transport, opts ...Option) *Transport {
	t := &Transport{
		next:   next,
		name:   "default",
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Verify implements mailer.Transport.
func (t *Transport) Verify(ctx context.Context) error {
	ctx, span := t.start(ctx, "mailer.Verify")
	defer span.End()

	start := time.Now()
	err := t.next.Verify(ctx)
	t.finish(span, "verify", start, err)
	return err
}

// Send implements mailer.Transport.
func (t *Transport) Send(ctx context.Context, opts *mailer.Options) (*mailer.Result, error) {
	ctx, span := t.start(ctx, "mailer.Send",
		attribute.Int("mail.recipients", len(opts.Recipients())),
		attribute.Int("mail.attachments", len(opts.Attachments)),
	)
	defer span.End()

	start := time.Now()
	res, err := t.next.Send(ctx, opts)
	if err == nil && res != nil && res.MessageID != "" {
		span.SetAttributes(attribute.String("mail.message_id", res.MessageID))
	}
	t.finish(span, "send", start, err)
	return res, err
}

// Close implements mailer.Transport.
func (t *Transport) Close() error {
	start := time.Now()
	err := t.next.Close()
	if t.metrics != nil {
		t.metrics.observe(t.name, "close", time.Since(start).Seconds(), err)
	}
	return err
}

func (t *Transport) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("mail.transport", t.name))
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (t *Transport) finish(span trace.Span, operation string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if t.metrics != nil {
		t.metrics.observe(t.name, operation, time.Since(start).Seconds(), err)
	}
}
