// Package repository defines the persistence port of the engine: the job
// registry every storage backend implements.
package repository

import (
	"context"
	"errors"

	"github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	"github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

// ErrJobNotFound is returned when a job ID does not exist in the registry.
var ErrJobNotFound = errors.New("job not found")

func init() {
	exception.RegisterErrorType("repository.ErrJobNotFound", ErrJobNotFound)
}

// JobFilter narrows a registry listing. Zero values match everything.
type JobFilter struct {
	// Kind restricts results to one job kind.
	Kind model.JobKind
	// Status restricts results to one status.
	Status model.JobStatus
	// Limit caps the number of returned jobs; 0 means no cap.
	Limit int
}

// JobRegistry stores jobs and mediates concurrent access to them.
// Implementations return deep copies from reads and apply optimistic locking
// on updates.
type JobRegistry interface {
	// SaveJob persists a newly submitted job.
	SaveJob(ctx context.Context, job *model.Job) error

	// UpdateJob persists a modified job. The stored version must match the
	// job's version minus any concurrent change; on success the version is
	// bumped. A cancellation request latched in the store is preserved even
	// when the incoming job has CancelRequested unset, so progress writes
	// cannot race a cancel away.
	UpdateJob(ctx context.Context, job *model.Job) error

	// FindJobByID returns a deep copy of the job, or ErrJobNotFound.
	FindJobByID(ctx context.Context, jobID string) (*model.Job, error)

	// ListJobs returns deep copies of jobs matching the filter, most
	// recently created first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*model.Job, error)

	// RequestCancel latches the cancellation flag on a processing job. It
	// returns model.ErrInvalidJobState when the job is not processing, and
	// ErrJobNotFound when it does not exist.
	RequestCancel(ctx context.Context, jobID string) error

	// Close releases the registry's resources.
	Close() error
}
