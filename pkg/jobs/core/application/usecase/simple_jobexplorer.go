package usecase

import (
	"context"
	"time"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	progress "github.com/attestia/jobcore/pkg/jobs/engine/progress"
)

// SimpleJobExplorer is the default implementation of JobExplorer.
type SimpleJobExplorer struct {
	registry repository.JobRegistry
	tracker  *progress.Tracker
}

var _ JobExplorer = (*SimpleJobExplorer)(nil)

// NewSimpleJobExplorer creates a new SimpleJobExplorer.
func NewSimpleJobExplorer(registry repository.JobRegistry, tracker *progress.Tracker) *SimpleJobExplorer {
	return &SimpleJobExplorer{registry: registry, tracker: tracker}
}

// GetJob implements JobExplorer.
func (e *SimpleJobExplorer) GetJob(ctx context.Context, jobID string) (*JobSnapshot, error) {
	job, err := e.registry.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return e.snapshot(job), nil
}

// ListJobs implements JobExplorer.
func (e *SimpleJobExplorer) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*JobSnapshot, error) {
	jobs, err := e.registry.ListJobs(ctx, filter)
	if err != nil {
		return nil, err
	}
	snapshots := make([]*JobSnapshot, len(jobs))
	for i, job := range jobs {
		snapshots[i] = e.snapshot(job)
	}
	return snapshots, nil
}

// snapshot derives the progress view for one job. Terminal jobs report their
// progress as of completion.
func (e *SimpleJobExplorer) snapshot(job *model.Job) *JobSnapshot {
	var startedAt time.Time
	if job.StartedAt != nil {
		startedAt = *job.StartedAt
	}
	now := time.Now()
	if job.CompletedAt != nil {
		now = *job.CompletedAt
	}
	return &JobSnapshot{
		Job:      job,
		Progress: e.tracker.Calculate(job.ProcessedItems, job.TotalItems, startedAt, now),
	}
}
