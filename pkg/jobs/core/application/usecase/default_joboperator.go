package usecase

import (
	"context"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	executor "github.com/attestia/jobcore/pkg/jobs/engine/executor"
	retry "github.com/attestia/jobcore/pkg/jobs/engine/retry"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// DefaultJobOperator is the default implementation of JobOperator. It
// delegates to the retry coordinator and launches retry jobs through the
// executor.
type DefaultJobOperator struct {
	coordinator *retry.Coordinator
	executor    *executor.Executor
}

var _ JobOperator = (*DefaultJobOperator)(nil)

// NewDefaultJobOperator creates a new DefaultJobOperator.
func NewDefaultJobOperator(coordinator *retry.Coordinator, exec *executor.Executor) *DefaultJobOperator {
	return &DefaultJobOperator{coordinator: coordinator, executor: exec}
}

// CancelJob implements JobOperator.
func (o *DefaultJobOperator) CancelJob(ctx context.Context, jobID string) error {
	return o.coordinator.Cancel(ctx, jobID)
}

// RetryJob implements JobOperator. The returned job is already launched.
func (o *DefaultJobOperator) RetryJob(ctx context.Context, jobID string) (*model.Job, error) {
	retryJob, err := o.coordinator.Retry(ctx, jobID)
	if err != nil {
		return nil, err
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		if err := o.executor.Run(runCtx, retryJob.ID); err != nil {
			logger.Errorf("Retry job '%s' run finished with error: %v", retryJob.ID, err)
		}
	}()

	return retryJob, nil
}
