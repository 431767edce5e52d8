// Package test provides factories and fakes shared by the engine's tests.
package test

import (
	"context"
	"fmt"
	"sync"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

// NewTestItems creates n sequentially numbered work items ("item-1" ...).
func NewTestItems(n int) []model.WorkItem {
	items := make([]model.WorkItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, model.WorkItem{ID: fmt.Sprintf("item-%d", i)})
	}
	return items
}

// NewTestJob creates a pending certificate job over the given items with the
// given batch size.
func NewTestJob(items []model.WorkItem, batchSize int) *model.Job {
	target := model.TargetRef{EventID: "evt-1", TemplateID: "tpl-1", CertificateType: "attendance"}
	return model.NewJob(model.JobKindCertificateGeneration, target, nil,
		model.JobConfig{BatchSize: batchSize}, items)
}

// NewTestSyncJob creates a pending attendance sync job over the given items.
func NewTestSyncJob(items []model.WorkItem, batchSize int) *model.Job {
	target := model.TargetRef{EventID: "evt-1", DeviceID: "dev-1", BatchID: "batch-1"}
	return model.NewJob(model.JobKindAttendanceSync, target, nil,
		model.JobConfig{BatchSize: batchSize}, items)
}

// FakeOperation is a scriptable ItemOperation. By default every item
// succeeds with a detail of "done-<id>". Individual items can be scripted to
// fail, fail systemically, or panic, and a hook can run before each item.
type FakeOperation struct {
	mu sync.Mutex

	kind model.JobKind

	// FailItems holds IDs that fail with an item-level error.
	FailItems map[string]bool
	// SystemicItems holds IDs whose failure is flagged systemic.
	SystemicItems map[string]bool
	// PanicItems holds IDs whose execution panics.
	PanicItems map[string]bool

	// BeforeItem, when set, runs before each item is processed.
	BeforeItem func(ctx context.Context, item model.WorkItem)

	executed []string
}

// NewFakeOperation creates a FakeOperation for the given job kind.
func NewFakeOperation(kind model.JobKind) *FakeOperation {
	return &FakeOperation{
		kind:          kind,
		FailItems:     make(map[string]bool),
		SystemicItems: make(map[string]bool),
		PanicItems:    make(map[string]bool),
	}
}

// Kind implements port.ItemOperation.
func (f *FakeOperation) Kind() model.JobKind {
	return f.kind
}

// Execute implements port.ItemOperation.
func (f *FakeOperation) Execute(ctx context.Context, target model.TargetRef, item model.WorkItem) (string, error) {
	if f.BeforeItem != nil {
		f.BeforeItem(ctx, item)
	}

	f.mu.Lock()
	f.executed = append(f.executed, item.ID)
	f.mu.Unlock()

	switch {
	case f.PanicItems[item.ID]:
		panic(fmt.Sprintf("scripted panic for %s", item.ID))
	case f.SystemicItems[item.ID]:
		return "", exception.NewSystemicError("fake_operation",
			fmt.Sprintf("collaborator unavailable at %s", item.ID), nil)
	case f.FailItems[item.ID]:
		return "", fmt.Errorf("scripted failure for %s", item.ID)
	}
	return "done-" + item.ID, nil
}

// ExecutedItems returns the IDs of the items executed so far, in order.
func (f *FakeOperation) ExecutedItems() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

// FakeParticipantSource serves a fixed participant list.
type FakeParticipantSource struct {
	Participants []model.Participant
	Err          error
}

// FetchParticipants implements port.ParticipantSource.
func (f *FakeParticipantSource) FetchParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Participants, nil
}

// FakeScanRecordSource serves a fixed scan record list.
type FakeScanRecordSource struct {
	Records []model.WorkItem
	Err     error
}

// FetchScanRecords implements port.ScanRecordSource.
func (f *FakeScanRecordSource) FetchScanRecords(ctx context.Context, deviceID, batchID string) ([]model.WorkItem, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records, nil
}

// FakeItemResolver resolves items from a fixed map, preserving request order.
type FakeItemResolver struct {
	Items map[string]model.WorkItem
	Err   error
}

// ResolveItems implements port.ItemResolver.
func (f *FakeItemResolver) ResolveItems(ctx context.Context, target model.TargetRef, itemIDs []string) ([]model.WorkItem, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	items := make([]model.WorkItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, ok := f.Items[id]
		if !ok {
			return nil, fmt.Errorf("unknown item '%s'", id)
		}
		items = append(items, item)
	}
	return items, nil
}

// RecordingJobListener records the job statuses observed around execution.
type RecordingJobListener struct {
	mu           sync.Mutex
	BeforeStatus []model.JobStatus
	AfterStatus  []model.JobStatus
}

// BeforeJob implements port.JobExecutionListener.
func (l *RecordingJobListener) BeforeJob(ctx context.Context, job *model.Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.BeforeStatus = append(l.BeforeStatus, job.Status)
}

// AfterJob implements port.JobExecutionListener.
func (l *RecordingJobListener) AfterJob(ctx context.Context, job *model.Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.AfterStatus = append(l.AfterStatus, job.Status)
}

var _ port.JobExecutionListener = (*RecordingJobListener)(nil)
var _ port.ItemOperation = (*FakeOperation)(nil)
var _ port.ParticipantSource = (*FakeParticipantSource)(nil)
var _ port.ScanRecordSource = (*FakeScanRecordSource)(nil)
var _ port.ItemResolver = (*FakeItemResolver)(nil)
