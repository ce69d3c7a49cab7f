// Package observability groups the logging, metrics, tracing and SLO
// packages shared by the API server and the worker.
//
// Subpackages:
//   - logging: slog logger construction and request scoped fields
//   - metrics: Prometheus business and database metrics
//   - tracing: OpenTelemetry provider setup and HTTP middleware
//   - slo: service level gauges derived from the request metrics
package observability
