// Package retry builds follow-up jobs from the failed items of finished jobs
// and relays cancellation requests.
package retry

import (
	"context"
	"fmt"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const moduleName = "retry"

// Coordinator creates retry jobs and forwards cancellation requests.
type Coordinator struct {
	registry repository.JobRegistry
	// resolver optionally re-resolves item payloads at retry time; nil means
	// the recorded items are reused.
	resolver port.ItemResolver
}

// NewCoordinator creates a Coordinator. resolver may be nil.
func NewCoordinator(registry repository.JobRegistry, resolver port.ItemResolver) *Coordinator {
	return &Coordinator{registry: registry, resolver: resolver}
}

// Retry creates a new pending job covering exactly the failed items of the
// source job, in their original processing order. The source job must be
// terminal and is never mutated. Retrying a job without failed items returns
// model.ErrNothingToRetry.
func (c *Coordinator) Retry(ctx context.Context, sourceJobID string) (*model.Job, error) {
	src, err := c.registry.FindJobByID(ctx, sourceJobID)
	if err != nil {
		return nil, err
	}
	if !src.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: job '%s' is %s, only finished jobs can be retried", model.ErrInvalidJobState, sourceJobID, src.Status)
	}
	if src.FailedItems == 0 {
		return nil, fmt.Errorf("%w: job '%s'", model.ErrNothingToRetry, sourceJobID)
	}

	failedIDs := src.FailedItemIDs()
	items, err := c.resolveItems(ctx, src, failedIDs)
	if err != nil {
		return nil, exception.NewBatchError(moduleName,
			fmt.Sprintf("failed to resolve items for retry of job '%s'", sourceJobID), err, false)
	}

	retryJob := model.NewJob(src.Kind, src.Target, src.Criteria, src.Config, items)
	retryJob.SourceJobID = src.ID
	retryJob.RetryCount = src.RetryCount + 1

	if err := c.registry.SaveJob(ctx, retryJob); err != nil {
		return nil, exception.NewBatchError(moduleName,
			fmt.Sprintf("failed to save retry job for '%s'", sourceJobID), err, false)
	}

	logger.Infof("Created retry job '%s' from '%s': %d failed items, retry depth %d",
		retryJob.ID, src.ID, len(items), retryJob.RetryCount)
	return retryJob, nil
}

// resolveItems builds the retry work set. With a resolver configured the
// payloads are fetched fresh; otherwise the items recorded at the source
// job's submission are reused.
func (c *Coordinator) resolveItems(ctx context.Context, src *model.Job, failedIDs []string) ([]model.WorkItem, error) {
	if c.resolver != nil {
		return c.resolver.ResolveItems(ctx, src.Target, failedIDs)
	}

	byID := make(map[string]model.WorkItem, len(src.Items))
	for _, item := range src.Items {
		byID[item.ID] = item
	}
	items := make([]model.WorkItem, 0, len(failedIDs))
	for _, id := range failedIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("failed item '%s' not found in source job's work set", id)
		}
		items = append(items, item)
	}
	return items, nil
}

// Cancel latches the cancellation flag on a processing job. The running
// executor observes the flag at its next batch boundary.
func (c *Coordinator) Cancel(ctx context.Context, jobID string) error {
	if err := c.registry.RequestCancel(ctx, jobID); err != nil {
		return err
	}
	logger.Infof("Cancellation requested for job '%s'", jobID)
	return nil
}
