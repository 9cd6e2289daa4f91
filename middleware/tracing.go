package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vigilhq/vigil/job"
)

// tracerName is the instrumentation scope name for vigil tracing.
const tracerName = "github.com/vigilhq/vigil"

// Tracing returns middleware that wraps each status check in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: vigil.job.id and vigil.check.status. On error,
// the span status is set to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, jobID string, next Handler) (job.Status, error) {
		ctx, span := tracer.Start(ctx, "vigil.job.check",
			trace.WithAttributes(
				attribute.String("vigil.job.id", jobID),
			),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()

		st, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("vigil.check.status", string(st)))
			span.SetStatus(codes.Ok, "")
		}

		return st, err
	}
}
