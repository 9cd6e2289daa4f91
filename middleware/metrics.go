package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vigilhq/vigil/job"
)

// meterName is the instrumentation scope name for vigil metrics.
const meterName = "github.com/vigilhq/vigil"

// Metrics returns middleware that records per-check metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - vigil.check.duration (Float64Histogram): status check latency in
//     seconds, with attributes: job_id, result ("ok" or "error")
//   - vigil.check.count (Int64Counter): total status checks,
//     with attributes: job_id, result ("ok" or "error")
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"vigil.check.duration",
		metric.WithDescription("Duration of a job status check in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	checks, cErr := meter.Int64Counter(
		"vigil.check.count",
		metric.WithDescription("Total number of job status checks"),
		metric.WithUnit("{check}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, jobID string, next Handler) (job.Status, error) {
		start := time.Now()
		st, err := next(ctx)
		elapsed := time.Since(start).Seconds()

		result := "ok"
		if err != nil {
			result = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("job_id", jobID),
			attribute.String("result", result),
		)

		duration.Record(ctx, elapsed, attrs)
		checks.Add(ctx, 1, attrs)

		return st, err
	}
}
