// Package port declares the interfaces the engine depends on to do its work:
// the per-item operations, the sources that resolve a job's work set, and the
// listeners notified around execution boundaries.
package port

import (
	"context"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// ItemOperation performs the engine's work for a single item. Implementations
// exist per job kind: one issues certificates, one applies attendance scans.
//
// A returned error flagged systemic (see the exception package) aborts the
// owning job; any other error is recorded as that item's failure and
// processing continues.
type ItemOperation interface {
	// Kind returns the job kind this operation handles.
	Kind() model.JobKind

	// Execute processes one work item against the job's target. On success
	// the returned detail is recorded with the item result, e.g. the ID of
	// the certificate that was issued.
	Execute(ctx context.Context, target model.TargetRef, item model.WorkItem) (detail string, err error)
}

// ParticipantSource resolves the participants of an event, used to build a
// certificate job's work set.
type ParticipantSource interface {
	// FetchParticipants returns the participants registered for the event.
	FetchParticipants(ctx context.Context, eventID string) ([]model.Participant, error)
}

// ScanRecordSource resolves the offline scan records of a device batch, used
// to build a sync job's work set.
type ScanRecordSource interface {
	// FetchScanRecords returns the scan records of one uploaded device batch.
	FetchScanRecords(ctx context.Context, deviceID, batchID string) ([]model.WorkItem, error)
}

// ItemResolver optionally re-resolves work items by ID when building a retry
// job, so a retry picks up current item payloads instead of the ones recorded
// at original submission. When absent, retries reuse the recorded items.
type ItemResolver interface {
	// ResolveItems returns work items for the given IDs, in the same order.
	ResolveItems(ctx context.Context, target model.TargetRef, itemIDs []string) ([]model.WorkItem, error)
}

// JobExecutionListener is notified around a whole job run.
type JobExecutionListener interface {
	// BeforeJob is called after the job transitions to processing, before
	// the first batch.
	BeforeJob(ctx context.Context, job *model.Job)

	// AfterJob is called once the job reaches a terminal state.
	AfterJob(ctx context.Context, job *model.Job)
}

// BatchListener is notified around each batch within a job run.
type BatchListener interface {
	// BeforeBatch is called before a batch's items are processed.
	BeforeBatch(ctx context.Context, job *model.Job, batchIndex int, size int)

	// AfterBatch is called after the batch's results have been applied.
	AfterBatch(ctx context.Context, job *model.Job, batchIndex int, results []model.ItemResult)
}
