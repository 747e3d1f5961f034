package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport is a mock implementation of the Transport interface.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) Send(ctx context.Context, opts *Options) (*Result, error) {
	args := m.Called(ctx, opts)
	result, _ := args.Get(0).(*Result)
	return result, args.Error(1)
}

func (m *MockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestMailer_Connect(t *testing.T) {
	t.Parallel()

	transport := &MockTransport{}
	transport.On("Verify", mock.Anything).Return(nil).Once()
	m := New(transport)

	require.Equal(t, StateReady, m.State())
	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, StateVerified, m.State())
	transport.AssertExpectations(t)
}

func TestMailer_Connect_Failure(t *testing.T) {
	t.Parallel()

	verifyErr := errors.New("dial tcp: connection refused")
	transport := &MockTransport{}
	transport.On("Verify", mock.Anything).Return(verifyErr)
	m := New(transport)

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.ErrorIs(t, err, verifyErr)
	require.Equal(t, StateReady, m.State())
}

func TestMailer_Destroy(t *testing.T) {
	t.Parallel()

	transport := &MockTransport{}
	transport.On("Close").Return(nil).Once()
	m := New(transport)

	require.NoError(t, m.Destroy(context.Background()))
	require.Equal(t, StateClosed, m.State())

	// Every operation fails once the transport is gone.
	require.ErrorIs(t, m.Connect(context.Background()), ErrTransportClosed)
	require.ErrorIs(t, m.Destroy(context.Background()), ErrTransportClosed)
	require.ErrorIs(t, m.Healthcheck()(context.Background()), ErrTransportClosed)

	_, err := m.Make().To("user@example.com").Text("hi").Send(context.Background())
	require.ErrorIs(t, err, ErrTransportClosed)

	transport.AssertExpectations(t)
	transport.AssertNotCalled(t, "Verify", mock.Anything)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMailer_Destroy_CloseError(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("quit: broken pipe")
	transport := &MockTransport{}
	transport.On("Close").Return(closeErr).Once()
	m := New(transport)

	require.ErrorIs(t, m.Destroy(context.Background()), closeErr)
	require.Equal(t, StateClosed, m.State())
	require.ErrorIs(t, m.Connect(context.Background()), ErrTransportClosed)
}

func TestMailer_NilTransport(t *testing.T) {
	t.Parallel()

	m := New(nil)
	require.Equal(t, StateClosed, m.State())
	require.ErrorIs(t, m.Connect(context.Background()), ErrTransportClosed)
}

func TestMailer_Healthcheck(t *testing.T) {
	t.Parallel()

	transport := &MockTransport{}
	transport.On("Verify", mock.Anything).Return(nil).Once()
	transport.On("Verify", mock.Anything).Return(errors.New("timeout")).Once()
	check := New(transport).Healthcheck()

	require.NoError(t, check(context.Background()))
	require.ErrorIs(t, check(context.Background()), ErrConnectionFailed)
}

func TestMailer_Make_ReturnsIndependentBuilders(t *testing.T) {
	t.Parallel()

	m := New(&MockTransport{})
	first := m.Make().To("a@example.com")
	second := m.Make().To("b@example.com")
	first.To("c@example.com")

	require.Len(t, first.Options().To, 2)
	require.Equal(t, []Address{NewAddress("b@example.com")}, second.Options().To)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ready", StateReady.String())
	require.Equal(t, "verified", StateVerified.String())
	require.Equal(t, "closed", StateClosed.String())
	require.Equal(t, "unknown", State(42).String())
}
