// Package attendance implements the offline scan sync job operation: it
// applies attendance scan records collected by check-in devices to the
// platform's attendance service.
package attendance

import (
	"context"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// Applier applies one offline scan record. Implementations must flag
// infrastructure failures as systemic errors; rejections of a single record
// (bad participant reference, duplicate scan) stay item-level.
type Applier interface {
	// ApplyScan applies the scan record and returns the resulting
	// attendance record ID.
	ApplyScan(ctx context.Context, target model.TargetRef, record model.WorkItem) (recordID string, err error)
}

// Operation adapts an Applier to the engine's per-item operation port.
type Operation struct {
	applier Applier
}

// NewOperation creates the attendance sync operation.
func NewOperation(applier Applier) *Operation {
	return &Operation{applier: applier}
}

// Kind implements port.ItemOperation.
func (o *Operation) Kind() model.JobKind {
	return model.JobKindAttendanceSync
}

// Execute implements port.ItemOperation. The applied record's ID is recorded
// as the item result detail.
func (o *Operation) Execute(ctx context.Context, target model.TargetRef, item model.WorkItem) (string, error) {
	return o.applier.ApplyScan(ctx, target, item)
}

var _ port.ItemOperation = (*Operation)(nil)
