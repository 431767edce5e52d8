package metrics

import (
	"context"
	"time"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to
// job execution. It standardizes job, batch, and item-level events so
// different metric backends (e.g. Prometheus) can plug in.
type MetricRecorder interface {
	// RecordJobStart records the start of a job run.
	RecordJobStart(ctx context.Context, job *model.Job)

	// RecordJobEnd records the end of a job run and its final status.
	RecordJobEnd(ctx context.Context, job *model.Job)

	// RecordBatch records a completed batch: how many items it processed
	// and how many of them succeeded.
	RecordBatch(ctx context.Context, kind model.JobKind, processed, successful int)

	// RecordItemOutcome records one item result by kind and outcome.
	RecordItemOutcome(ctx context.Context, kind model.JobKind, outcome model.ItemOutcome)

	// RecordCancellation records that a job was cancelled.
	RecordCancellation(ctx context.Context, kind model.JobKind)

	// RecordDuration records the execution time of a named operation.
	// Tags carry additional attributes, e.g. {"kind": "CERTIFICATE_GENERATION"}.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
