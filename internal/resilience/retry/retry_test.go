package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/domain/entity"
)

func fast(retryable func(error) bool) Config {
	return Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2, Retryable: retryable}
}

var errTransient = &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}

func TestWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", wantCalls: 1},
		{name: "succeeds after transient failures", failures: []error{errTransient, errTransient}, wantCalls: 3},
		{name: "gives up after max attempts", failures: []error{errTransient, errTransient, errTransient, errTransient}, wantCalls: 3, wantErr: syscall.ECONNREFUSED},
		{name: "permanent error stops immediately", failures: []error{entity.ErrNotFound}, wantCalls: 1, wantErr: entity.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			err := WithBackoff(context.Background(), fast(nil), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWithBackoff_MaxAttemptsMessage(t *testing.T) {
	err := WithBackoff(context.Background(), fast(nil), func() error { return errTransient })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestWithBackoff_ContextCanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	calls := 0
	err := WithBackoff(ctx, cfg, func() error {
		calls++
		cancel()
		return errTransient
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithBackoff_ConflictPolicy(t *testing.T) {
	cfg := ConflictConfig()
	cfg.InitialDelay, cfg.MaxDelay = time.Millisecond, time.Millisecond

	calls := 0
	err := WithBackoff(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("insert tag: %w", entity.ErrConflict)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = WithBackoff(context.Background(), cfg, func() error {
		calls++
		return errTransient
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "network errors are not conflicts")
}

func TestConfig_Backoff(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, cfg.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, cfg.Backoff(2))
	assert.Equal(t, 800*time.Millisecond, cfg.Backoff(4))
	assert.Equal(t, time.Second, cfg.Backoff(5))

	flat := Config{InitialDelay: time.Second}
	assert.Equal(t, time.Second, flat.Backoff(3), "multiplier below 1 keeps the delay constant")
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil},
		{name: "canceled", err: context.Canceled},
		{name: "deadline", err: fmt.Errorf("send: %w", context.DeadlineExceeded)},
		{name: "network timeout", err: timeoutErr{}, want: true},
		{name: "connection refused", err: errTransient, want: true},
		{name: "connection reset", err: fmt.Errorf("write: %w", syscall.ECONNRESET), want: true},
		{name: "smtp 421", err: &textproto.Error{Code: 421, Msg: "try again later"}, want: true},
		{name: "smtp 550", err: &textproto.Error{Code: 550, Msg: "mailbox unavailable"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPolicies(t *testing.T) {
	mail := MailConfig()
	assert.Equal(t, 3, mail.MaxAttempts)
	assert.True(t, mail.Retryable(&textproto.Error{Code: 451}))

	conflict := ConflictConfig()
	assert.Less(t, conflict.MaxDelay, mail.InitialDelay)
	assert.True(t, conflict.Retryable(entity.ErrConflict))
}

func TestJitter(t *testing.T) {
	assert.Equal(t, time.Second, jitter(time.Second, 0))
	for i := 0; i < 20; i++ {
		d := jitter(time.Second, 5)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}
