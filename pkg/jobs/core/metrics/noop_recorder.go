package metrics

import (
	"context"
	"time"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// NoOpMetricRecorder is a MetricRecorder that does nothing. It is used when
// metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

func (r *NoOpMetricRecorder) RecordJobStart(ctx context.Context, job *model.Job) {}
func (r *NoOpMetricRecorder) RecordJobEnd(ctx context.Context, job *model.Job)   {}
func (r *NoOpMetricRecorder) RecordBatch(ctx context.Context, kind model.JobKind, processed, successful int) {
}
func (r *NoOpMetricRecorder) RecordItemOutcome(ctx context.Context, kind model.JobKind, outcome model.ItemOutcome) {
}
func (r *NoOpMetricRecorder) RecordCancellation(ctx context.Context, kind model.JobKind) {}
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer is a Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

func (t *NoOpTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) StartBatchSpan(ctx context.Context, job *model.Job, batchIndex int) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
