// Package circuitbreaker stops calling the database or the mail relay while
// they keep failing, and lets a few probe requests through once a cool-down
// has passed. It is a thin layer over github.com/sony/gobreaker.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio, 0.6 = 60%, that trips the circuit
	// once at least MinRequests have been counted.
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful classifies an error returned through the breaker.
	// Nil counts every non-nil error as a failure.
	IsSuccessful func(err error) bool

	OnStateChange func(name string, to gobreaker.State)
}

// MailConfig is used per mail channel. Registration keeps working while
// the relay is down; mail is dropped instead of queued.
func MailConfig() Config {
	return Config{
		Name:             "smtp-relay",
		MaxRequests:      1,
		Interval:         5 * time.Minute,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker and publishes its state.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker. Its state gauge starts at closed.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			recordState(name, to)
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to)
			}
		},
	}

	recordState(cfg.Name, gobreaker.StateClosed)
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the breaker. While open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := cb.breaker.Execute(fn)
	if IsRejected(err) {
		breakerRejected.WithLabelValues(cb.name).Inc()
	}
	return res, err
}

// Do is Execute with a typed result.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	// res is nil when the breaker rejected the call
	v, _ := res.(T)
	return v, err
}

// Run is Execute for functions without a result.
func (cb *CircuitBreaker) Run(fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// IsRejected reports whether err came from the breaker instead of the
// protected call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
