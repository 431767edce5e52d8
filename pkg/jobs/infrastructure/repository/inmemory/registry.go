// Package inmemory provides a JobRegistry backed by process memory. It is
// the default backend for tests and single-node deployments without
// durability requirements.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
)

// Registry is an in-memory JobRegistry. All reads return deep copies, so
// callers can never alias stored state. Updates use the job version for
// optimistic locking.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

var _ repository.JobRegistry = (*Registry)(nil)

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*model.Job)}
}

// SaveJob implements repository.JobRegistry.
func (r *Registry) SaveJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job '%s' already exists", job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

// UpdateJob implements repository.JobRegistry. A version mismatch means a
// concurrent writer got there first. A cancellation request latched in the
// store survives updates that do not carry it.
func (r *Registry) UpdateJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobs[job.ID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if stored.Version != job.Version {
		return fmt.Errorf("optimistic lock failure for job '%s': stored version %d, expected %d",
			job.ID, stored.Version, job.Version)
	}

	updated := job.Clone()
	updated.Version = stored.Version + 1
	if stored.CancelRequested {
		updated.CancelRequested = true
	}
	r.jobs[job.ID] = updated

	job.Version = updated.Version
	job.CancelRequested = updated.CancelRequested
	return nil
}

// FindJobByID implements repository.JobRegistry.
func (r *Registry) FindJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return stored.Clone(), nil
}

// ListJobs implements repository.JobRegistry.
func (r *Registry) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if filter.Kind != "" && job.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		matched = append(matched, job.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreateTime.Equal(matched[j].CreateTime) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreateTime.After(matched[j].CreateTime)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// RequestCancel implements repository.JobRegistry. The flag is latched
// without bumping the version, so a running executor's progress writes keep
// succeeding.
func (r *Registry) RequestCancel(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobs[jobID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if stored.Status != model.JobStatusProcessing {
		return fmt.Errorf("%w: job '%s' is %s, only processing jobs can be cancelled",
			model.ErrInvalidJobState, jobID, stored.Status)
	}
	stored.CancelRequested = true
	return nil
}

// Close implements repository.JobRegistry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = make(map[string]*model.Job)
	return nil
}
