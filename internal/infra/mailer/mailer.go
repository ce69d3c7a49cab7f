// Package mailer provides the mail delivery channels used by usecase/mail:
// an SMTP relay channel and a log channel for development.
package mailer

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket that keeps the relay from being flooded.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond messages per second with the given burst.
//
// Example:
//
//	limiter := NewRateLimiter(2.0, 5)  // 2 mails/s with burst of 5
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
