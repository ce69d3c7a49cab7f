package mail

import (
	"context"
	"errors"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/resilience/circuitbreaker"
	"blog-platform/internal/resilience/retry"
)

// mockChannel is a test implementation of the Channel interface
type mockChannel struct {
	name        string
	enabled     bool
	failures    int   // number of leading calls that fail with sendError
	sendError   error // used for the first failures calls, or always when failures is 0
	sendDelay   time.Duration
	panicOnSend bool

	mu       sync.Mutex
	calls    int
	received []Message
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()

	if m.panicOnSend {
		panic("mock panic in Send()")
	}
	if m.sendDelay > 0 {
		select {
		case <-time.After(m.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.sendError != nil && (m.failures == 0 || call <= m.failures) {
		return m.sendError
	}

	m.mu.Lock()
	m.received = append(m.received, msg)
	m.mu.Unlock()
	return nil
}

func (m *mockChannel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockChannel) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.received...)
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func activation() Message {
	return Message{To: "ada@example.com", Subject: "Activate your account", Body: "http://localhost/accounts/register/activate?token=x"}
}

func shutdown(t *testing.T, svc Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "valid", msg: activation()},
		{name: "missing recipient", msg: Message{Subject: "s"}, wantErr: true},
		{name: "recipient without at", msg: Message{To: "ada", Subject: "s"}, wantErr: true},
		{name: "blank subject", msg: Message{To: "ada@example.com", Subject: "  "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSend_InvalidMessage(t *testing.T) {
	ch := &mockChannel{name: "smtp", enabled: true}
	svc := NewService([]Channel{ch}, 2)

	err := svc.Send(context.Background(), Message{To: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	shutdown(t, svc)
	assert.Equal(t, 0, ch.callCount())
}

func TestSend_SkipsDisabledChannels(t *testing.T) {
	enabled := &mockChannel{name: "log", enabled: true}
	disabled := &mockChannel{name: "smtp", enabled: false}
	svc := NewService([]Channel{enabled, disabled}, 2)

	require.NoError(t, svc.Send(context.Background(), activation()))
	shutdown(t, svc)

	assert.Equal(t, 1, enabled.callCount())
	assert.Equal(t, 0, disabled.callCount())
	assert.Equal(t, []Message{activation()}, enabled.messages())
}

func TestSend_RetriesTransientFailures(t *testing.T) {
	ch := &mockChannel{
		name:      "smtp",
		enabled:   true,
		failures:  2,
		sendError: &textproto.Error{Code: 421, Msg: "service not available"},
	}
	svc := NewService([]Channel{ch}, 1,
		WithRetryConfig(fastRetry()),
		WithBreakerConfig(circuitbreaker.Config{Name: "test", MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 1, MinRequests: 100}))

	require.NoError(t, svc.Send(context.Background(), activation()))
	shutdown(t, svc)

	assert.Equal(t, 3, ch.callCount())
	assert.Len(t, ch.messages(), 1)
}

func TestSend_DoesNotRetryPermanentFailures(t *testing.T) {
	ch := &mockChannel{
		name:      "smtp",
		enabled:   true,
		sendError: &textproto.Error{Code: 550, Msg: "mailbox unavailable"},
	}
	svc := NewService([]Channel{ch}, 1, WithRetryConfig(fastRetry()))

	require.NoError(t, svc.Send(context.Background(), activation()))
	shutdown(t, svc)

	assert.Equal(t, 1, ch.callCount())
}

func TestSend_CircuitOpensAfterFailures(t *testing.T) {
	ch := &mockChannel{name: "smtp", enabled: true, sendError: errors.New("relay refused")}
	svc := NewService([]Channel{ch}, 1,
		WithRetryConfig(fastRetry()),
		WithBreakerConfig(circuitbreaker.Config{Name: "test", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 1}))

	require.NoError(t, svc.Send(context.Background(), activation()))
	// wait for the first delivery to trip the breaker
	require.Eventually(t, func() bool {
		return svc.ChannelHealth()[0].CircuitState == "open"
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, svc.Send(context.Background(), activation()))
	shutdown(t, svc)

	assert.Equal(t, 1, ch.callCount(), "open circuit must short-circuit the second mail")
}

func TestSend_RecoversFromPanic(t *testing.T) {
	ch := &mockChannel{name: "smtp", enabled: true, panicOnSend: true}
	svc := NewService([]Channel{ch}, 1, WithRetryConfig(fastRetry()))

	require.NoError(t, svc.Send(context.Background(), activation()))
	shutdown(t, svc)

	assert.Equal(t, 1, ch.callCount())
}

func TestSend_AfterShutdown(t *testing.T) {
	svc := NewService([]Channel{&mockChannel{name: "log", enabled: true}}, 1)
	shutdown(t, svc)

	err := svc.Send(context.Background(), activation())
	assert.ErrorIs(t, err, ErrServiceClosed)
}

func TestShutdown_CancelsSlowDeliveries(t *testing.T) {
	ch := &mockChannel{name: "smtp", enabled: true, sendDelay: time.Minute}
	svc := NewService([]Channel{ch}, 1, WithRetryConfig(fastRetry()))

	require.NoError(t, svc.Send(context.Background(), activation()))
	require.Eventually(t, func() bool { return ch.callCount() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := svc.Shutdown(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ch.messages())
}

func TestChannelHealth(t *testing.T) {
	svc := NewService([]Channel{
		&mockChannel{name: "smtp", enabled: false},
		&mockChannel{name: "log", enabled: true},
	}, 1)
	defer shutdown(t, svc)

	assert.Equal(t, []ChannelHealthStatus{
		{Name: "smtp", Enabled: false, CircuitState: "closed"},
		{Name: "log", Enabled: true, CircuitState: "closed"},
	}, svc.ChannelHealth())
}
