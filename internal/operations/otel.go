package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "tabclean.operations"
	MeterName  = "tabclean.operations"
)

// OperationTracer provides OpenTelemetry instrumentation for jobs. It uses
// the global providers, so it is a no-op until telemetry is initialised.
type OperationTracer struct {
	tracer   trace.Tracer
	started  metric.Int64Counter
	finished metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOperationTracer creates a tracer bound to the global providers
func NewOperationTracer() *OperationTracer {
	meter := otel.Meter(MeterName)
	started, _ := meter.Int64Counter("tabclean_operations_started_total",
		metric.WithDescription("Operations submitted"))
	finished, _ := meter.Int64Counter("tabclean_operations_finished_total",
		metric.WithDescription("Operations finished, by status"))
	duration, _ := meter.Float64Histogram("tabclean_operation_duration_seconds",
		metric.WithDescription("Operation wall time"),
		metric.WithUnit("s"))

	return &OperationTracer{
		tracer:   otel.Tracer(TracerName),
		started:  started,
		finished: finished,
		duration: duration,
	}
}

type startKey struct{}

// Start opens a span for the job
func (ot *OperationTracer) Start(ctx context.Context, job *Job) (context.Context, trace.Span) {
	ctx, span := ot.tracer.Start(ctx, "operation."+job.Kind,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", job.ID),
			attribute.String("operation.kind", job.Kind),
		),
	)
	if ot.started != nil {
		ot.started.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", job.Kind)))
	}
	return context.WithValue(ctx, startKey{}, time.Now()), span
}

// End records the outcome and closes the span
func (ot *OperationTracer) End(ctx context.Context, span trace.Span, kind string, status JobStatus, err error) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", string(status)),
	)
	if ot.finished != nil {
		ot.finished.Add(ctx, 1, attrs)
	}
	if started, ok := ctx.Value(startKey{}).(time.Time); ok && ot.duration != nil {
		ot.duration.Record(ctx, time.Since(started).Seconds(), attrs)
	}

	if err != nil && status == JobStatusFailed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, string(status))
	}
	span.End()
}
