// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the business and database metrics:
//   - Articles created, archived and counted per status
//   - Comments, searches, registrations, activations and logins
//   - Rows purged by the worker
//   - Database query durations and pool statistics
//
// HTTP request metrics live with the HTTP middleware in internal/handler/http.
// All metrics are registered with the Prometheus default registry and
// exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "blog-platform/internal/observability/metrics"
//
//	func purge(ctx context.Context) {
//	    start := time.Now()
//	    n, _ := sessions.DeleteExpired(ctx, time.Now())
//	    metrics.RecordPurge("sessions", n)
//	    metrics.RecordDBQuery("purge_sessions", time.Since(start))
//	}
package metrics
