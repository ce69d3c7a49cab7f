// Package resilience groups the fault tolerance helpers used around the
// database and the mail relay.
//
//   - circuitbreaker: fails fast while a dependency keeps failing
//   - retry: exponential backoff with jitter for transient errors
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.MailConfig())
//	err := cb.Run(func() error { return sendMail(ctx) })
//
//	err = retry.WithBackoff(ctx, retry.ConflictConfig(), func() error {
//	    return insertTag(ctx)
//	})
package resilience
