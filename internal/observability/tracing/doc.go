// Package tracing wires OpenTelemetry into the HTTP server.
//
// Init installs the tracer provider at startup; Middleware opens one server
// span per request, named after the normalized route so that article and
// comment ids do not leak into span names:
//
//	shutdown := tracing.Init(cfg.Version, 0.1)
//	defer shutdown(context.Background())
//
//	handler := tracing.Middleware(mux)
package tracing
