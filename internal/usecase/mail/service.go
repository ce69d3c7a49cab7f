package mail

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/resilience/circuitbreaker"
	"blog-platform/internal/resilience/retry"
)

const (
	// workerPoolTimeout is how long a dispatch waits for a free worker slot.
	workerPoolTimeout = 5 * time.Second

	// deliveryTimeout bounds one delivery, retries included.
	deliveryTimeout = 60 * time.Second
)

// Service is a Sender that fans each message out to every enabled channel.
type Service interface {
	Sender

	// ChannelHealth returns the state of every registered channel.
	ChannelHealth() []ChannelHealthStatus

	// Shutdown stops accepting mail and waits for in-flight deliveries
	// until ctx is done.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus describes one channel.
type ChannelHealthStatus struct {
	Name         string `json:"name"`
	Enabled      bool   `json:"enabled"`
	CircuitState string `json:"circuit_state"`
}

// Option customizes a Service.
type Option func(*service)

// WithRetryConfig replaces retry.MailConfig.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *service) { s.retryCfg = cfg }
}

// WithBreakerConfig replaces circuitbreaker.MailConfig. The name of each
// breaker is suffixed with the channel name.
func WithBreakerConfig(cfg circuitbreaker.Config) Option {
	return func(s *service) { s.breakerCfg = cfg }
}

type service struct {
	channels   []Channel
	breakers   map[string]*circuitbreaker.CircuitBreaker
	workerPool chan struct{}
	retryCfg   retry.Config
	breakerCfg circuitbreaker.Config

	mu             sync.RWMutex
	closed         bool
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a Service over channels with at most maxConcurrent
// deliveries in flight.
func NewService(channels []Channel, maxConcurrent int, opts ...Option) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	s := &service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		retryCfg:       retry.MailConfig(),
		breakerCfg:     circuitbreaker.MailConfig(),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	enabled := 0
	for _, ch := range channels {
		cfg := s.breakerCfg
		cfg.Name = s.breakerCfg.Name + "/" + ch.Name()
		channelName := ch.Name()
		cfg.OnStateChange = func(_ string, to gobreaker.State) {
			RecordCircuitState(channelName, to)
		}
		s.breakers[ch.Name()] = circuitbreaker.New(cfg)
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(enabled)

	return s
}

// Send implements Sender. It validates msg and returns immediately; each
// enabled channel delivers it in its own goroutine.
func (s *service) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrServiceClosed
	}

	requestID := requestid.FromContext(ctx)
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		s.wg.Add(1)
		go s.deliver(requestID, ch, msg)
	}
	return nil
}

func (s *service) deliver(requestID string, channel Channel, msg Message) {
	defer s.wg.Done()

	incrementActive()
	defer decrementActive()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in mail channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Mail dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Any("error", ErrMailDropped))
		RecordDropped(channel.Name(), "pool_full")
		return
	case <-s.shutdownCtx.Done():
		RecordDropped(channel.Name(), "shutdown")
		return
	}

	breaker := s.breakers[channel.Name()]
	if breaker.IsOpen() {
		slog.Warn("Mail channel circuit open, dropping mail",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, deliveryTimeout)
	defer cancel()
	ctx = requestid.WithRequestID(ctx, requestID)

	start := time.Now()
	RecordDispatch(channel.Name())

	err := retry.WithBackoff(ctx, s.retryCfg, func() error {
		return breaker.Run(func() error {
			return channel.Send(ctx, msg)
		})
	})
	duration := time.Since(start)

	if err != nil {
		RecordFailure(channel.Name(), duration)
		if circuitbreaker.IsRejected(err) {
			RecordDropped(channel.Name(), "circuit_open")
		}
		slog.Warn("Mail delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("subject", msg.Subject),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}

	RecordSuccess(channel.Name(), duration)
	slog.Info("Mail delivered",
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.String("subject", msg.Subject),
		slog.Duration("send_duration", duration))
}

// ChannelHealth implements Service.
func (s *service) ChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:         ch.Name(),
			Enabled:      ch.IsEnabled(),
			CircuitState: s.breakers[ch.Name()].State().String(),
		})
	}
	return statuses
}

// Shutdown implements Service. In-flight deliveries get until ctx is done;
// after that their contexts are cancelled.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down mail service")

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.shutdownCancel()
		slog.Info("Mail service shutdown complete")
		return nil
	case <-ctx.Done():
		s.shutdownCancel()
		<-done
		return fmt.Errorf("mail shutdown: %w", ctx.Err())
	}
}
