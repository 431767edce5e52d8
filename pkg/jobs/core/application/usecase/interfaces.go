// Package usecase contains the application services over the job engine:
// submitting jobs, querying them, and operating on running or finished ones.
package usecase

import (
	"context"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	progress "github.com/attestia/jobcore/pkg/jobs/engine/progress"
)

// CertificateJobRequest describes a bulk certificate generation submission.
type CertificateJobRequest struct {
	// EventID is the event to issue certificates for.
	EventID string
	// TemplateID selects the certificate template.
	TemplateID string
	// CertificateType distinguishes e.g. attendance vs completion.
	CertificateType string
	// Criteria filters the event's participants.
	Criteria model.EligibilityCriteria
	// Config tunes batching; zero values take the engine defaults.
	Config model.JobConfig
}

// SyncJobRequest describes an offline attendance scan sync submission.
type SyncJobRequest struct {
	// EventID is the event the scans belong to.
	EventID string
	// DeviceID is the check-in device that collected the scans.
	DeviceID string
	// BatchID identifies the uploaded scan batch.
	BatchID string
	// Config tunes batching; zero values take the engine defaults.
	Config model.JobConfig
}

// JobSnapshot pairs a job with its derived progress figures.
type JobSnapshot struct {
	Job      *model.Job
	Progress progress.Progress
}

// JobSubmitter accepts job submissions, builds their work sets, and launches
// execution asynchronously.
type JobSubmitter interface {
	// SubmitCertificateJob creates and launches a certificate generation
	// job covering the event's eligible participants.
	SubmitCertificateJob(ctx context.Context, req CertificateJobRequest) (*model.Job, error)

	// SubmitSyncJob creates and launches an attendance sync job covering
	// the device batch's scan records.
	SubmitSyncJob(ctx context.Context, req SyncJobRequest) (*model.Job, error)
}

// JobExplorer provides read access to jobs and their progress.
type JobExplorer interface {
	// GetJob returns the job with its current progress, or
	// repository.ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*JobSnapshot, error)

	// ListJobs returns jobs matching the filter, most recent first.
	ListJobs(ctx context.Context, filter repository.JobFilter) ([]*JobSnapshot, error)
}

// JobOperator performs operations on submitted jobs: cancellation and retry.
type JobOperator interface {
	// CancelJob requests cooperative cancellation of a processing job. The
	// job stops at its next batch boundary.
	CancelJob(ctx context.Context, jobID string) error

	// RetryJob creates and launches a new job covering the failed items of
	// a finished job. The source job is not modified.
	RetryJob(ctx context.Context, jobID string) (*model.Job, error)
}
