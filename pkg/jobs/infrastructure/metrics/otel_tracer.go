package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
)

const tracerName = "github.com/attestia/jobcore"

// OpenTelemetryTracer implements coremetrics.Tracer on OpenTelemetry. Spans
// go to whatever tracer provider the application installed globally; without
// one they are no-ops.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a new OpenTelemetryTracer.
func NewOpenTelemetryTracer() *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: otel.Tracer(tracerName)}
}

// StartJobSpan implements coremetrics.Tracer.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job.run",
		trace.WithAttributes(
			attribute.String("job.id", job.ID),
			attribute.String("job.kind", string(job.Kind)),
			attribute.String("job.event_id", job.Target.EventID),
			attribute.Int("job.total_items", job.TotalItems),
		))
	return ctx, func() {
		span.SetAttributes(attribute.String("job.status", string(job.Status)))
		span.End()
	}
}

// StartBatchSpan implements coremetrics.Tracer.
func (t *OpenTelemetryTracer) StartBatchSpan(ctx context.Context, job *model.Job, batchIndex int) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job.batch",
		trace.WithAttributes(
			attribute.String("job.id", job.ID),
			attribute.Int("batch.index", batchIndex),
		))
	return ctx, func() { span.End() }
}

// RecordError implements coremetrics.Tracer.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent implements coremetrics.Tracer.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

var _ coremetrics.Tracer = (*OpenTelemetryTracer)(nil)
