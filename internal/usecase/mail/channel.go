// Package mail dispatches outgoing mail, such as account activation links,
// across delivery channels without blocking the request that triggered it.
package mail

import (
	"context"
	"strings"
)

// Message is a plain text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Validate reports ErrInvalidMessage when the recipient or subject is missing.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || !strings.Contains(m.To, "@") {
		return ErrInvalidMessage
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender accepts mail for delivery. Send returns once the message is queued;
// delivery failures are logged and counted, never returned.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Channel delivers mail over one transport (SMTP relay, log, ...).
//
// Implementations must be safe for concurrent use and respect ctx
// cancellation. Send is called through a circuit breaker and retried with
// backoff by the Service, so a channel makes exactly one attempt per call.
type Channel interface {
	// Name identifies the channel in logs, metrics and health output.
	Name() string

	// IsEnabled reports whether the channel is configured.
	IsEnabled() bool

	// Send delivers msg once.
	Send(ctx context.Context, msg Message) error
}
