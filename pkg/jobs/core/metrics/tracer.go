package metrics

import (
	"context"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing. It lets the
// engine emit spans for job runs and batches without binding the core to a
// concrete tracing backend.
type Tracer interface {
	// StartJobSpan starts a span covering one job run. The returned
	// function ends the span and should be deferred.
	StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func())

	// StartBatchSpan starts a span covering one batch within a job run.
	StartBatchSpan(ctx context.Context, job *model.Job, batchIndex int) (context.Context, func())

	// RecordError records an error on the current span.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records a named event with attributes on the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
