package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName names the tracer and the service resource.
const ServiceName = "blog-platform"

var tracer = otel.Tracer(ServiceName)

// GetTracer returns the tracer used for request spans.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "article.index")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Init installs a global tracer provider sampling ratio of the root spans
// and the W3C trace context propagator. The returned function flushes and
// stops the provider.
func Init(version string, ratio float64) func(context.Context) error {
	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer = tp.Tracer(ServiceName)
	return tp.Shutdown
}
