package instrument_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
	"github.com/dmitrymomot/mailkit/pkg/mailer/instrument"
	"github.com/dmitrymomot/mailkit/pkg/mailer/memory"
)

func setup(t *testing.T) (*memory.Transport, *instrument.Transport, *prometheus.Registry, *tracetest.SpanRecorder) {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics, err := instrument.NewMetrics(reg)
	require.NoError(t, err)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	inner := memory.New()
	tr := instrument.Wrap(inner,
		instrument.WithName("memory"),
		instrument.WithMetrics(metrics),
		instrument.WithTracerProvider(tp),
	)
	return inner, tr, reg, sr
}

func TestTransport_Send(t *testing.T) {
	t.Parallel()

	inner, tr, reg, sr := setup(t)
	m := mailer.New(tr)

	_, err := m.Make().To("a@example.com").CC("b@example.com").Text("hi").Send(context.Background())
	require.NoError(t, err)
	require.Len(t, inner.Messages(), 1)

	expected := `
# HELP mailer_transport_operations_total Mail transport operations by transport, operation and status.
# TYPE mailer_transport_operations_total counter
mailer_transport_operations_total{operation="send",status="success",transport="memory"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mailer_transport_operations_total"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mailer.Send", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("mail.recipients", 2))
	assert.Contains(t, spans[0].Attributes(), attribute.String("mail.transport", "memory"))
}

func TestTransport_SendError(t *testing.T) {
	t.Parallel()

	inner, tr, reg, sr := setup(t)
	sendErr := errors.New("mailbox full")
	inner.FailSend(sendErr)

	_, err := tr.Send(context.Background(), &mailer.Options{})
	require.ErrorIs(t, err, sendErr)

	count, err := testutil.GatherAndCount(reg, "mailer_transport_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "mailbox full", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "error recorded as span event")
}

func TestTransport_VerifyAndClose(t *testing.T) {
	t.Parallel()

	inner, tr, reg, sr := setup(t)
	m := mailer.New(tr)

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Destroy(context.Background()))
	assert.True(t, inner.Closed())
	assert.Equal(t, 1, inner.Verifications())

	expected := `
# HELP mailer_transport_operations_total Mail transport operations by transport, operation and status.
# TYPE mailer_transport_operations_total counter
mailer_transport_operations_total{operation="close",status="success",transport="memory"} 1
mailer_transport_operations_total{operation="verify",status="success",transport="memory"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mailer_transport_operations_total"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mailer.Verify", spans[0].Name())
}

func TestNewMetrics_RegisterTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := instrument.NewMetrics(reg)
	require.NoError(t, err)
	second, err := instrument.NewMetrics(reg)
	require.NoError(t, err)

	_ = instrument.Wrap(memory.New(), instrument.WithMetrics(first)).Close()
	_ = instrument.Wrap(memory.New(), instrument.WithMetrics(second)).Close()

	expected := `
# HELP mailer_transport_operations_total Mail transport operations by transport, operation and status.
# TYPE mailer_transport_operations_total counter
mailer_transport_operations_total{operation="close",status="success",transport="default"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mailer_transport_operations_total"))
}
