// Package executor drives a job through its lifecycle: it claims a pending
// job, processes its work set batch by batch with bookkeeping after every
// batch, observes cancellation requests at batch boundaries, and settles the
// job into its terminal state.
package executor

import (
	"context"
	"fmt"
	"time"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
	batchpkg "github.com/attestia/jobcore/pkg/jobs/engine/batch"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const moduleName = "executor"

// Executor runs jobs to completion.
type Executor struct {
	registry       repository.JobRegistry
	processor      *batchpkg.Processor
	operations     map[model.JobKind]port.ItemOperation
	jobListeners   []port.JobExecutionListener
	batchListeners []port.BatchListener
	recorder       coremetrics.MetricRecorder
	tracer         coremetrics.Tracer
}

// NewExecutor creates an Executor wired with the registered per-kind
// operations and listeners.
func NewExecutor(
	registry repository.JobRegistry,
	processor *batchpkg.Processor,
	operations []port.ItemOperation,
	jobListeners []port.JobExecutionListener,
	batchListeners []port.BatchListener,
	recorder coremetrics.MetricRecorder,
	tracer coremetrics.Tracer,
) *Executor {
	byKind := make(map[model.JobKind]port.ItemOperation, len(operations))
	for _, op := range operations {
		byKind[op.Kind()] = op
	}
	return &Executor{
		registry:       registry,
		processor:      processor,
		operations:     byKind,
		jobListeners:   jobListeners,
		batchListeners: batchListeners,
		recorder:       recorder,
		tracer:         tracer,
	}
}

// Run executes the job with the given ID. It returns model.ErrInvalidJobState
// without touching the job when it is not pending. Item-level failures are
// recorded and never fail the job; a systemic failure fails it with partial
// results preserved. A latched cancellation request or a done context stops
// the job at the next batch boundary.
func (e *Executor) Run(ctx context.Context, jobID string) error {
	job, err := e.registry.FindJobByID(ctx, jobID)
	if err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}
	if job.Status != model.JobStatusPending {
		return fmt.Errorf("%w: job '%s' is %s, only pending jobs can run", model.ErrInvalidJobState, jobID, job.Status)
	}

	if err := job.MarkAsProcessing(); err != nil {
		return err
	}
	if err := e.registry.UpdateJob(ctx, job); err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to claim job '%s'", jobID), err, false)
	}

	ctx, endSpan := e.tracer.StartJobSpan(ctx, job)
	defer endSpan()
	e.recorder.RecordJobStart(ctx, job)
	for _, l := range e.jobListeners {
		l.BeforeJob(ctx, job)
	}

	logger.Infof("Job '%s' (%s) started: %d items, batch size %d", job.ID, job.Kind, job.TotalItems, job.Config.BatchSize)

	op, ok := e.operations[job.Kind]
	if !ok {
		failErr := exception.NewSystemicError(moduleName,
			fmt.Sprintf("no operation registered for job kind '%s'", job.Kind), nil)
		return e.failJob(ctx, job, failErr)
	}

	if job.TotalItems == 0 {
		return e.completeJob(ctx, job)
	}

	batchIndex := 0
	for job.ProcessedItems < job.TotalItems {
		cancelled, err := e.cancelRequested(ctx, job.ID)
		if err != nil {
			return e.failJob(ctx, job, exception.NewSystemicError(moduleName,
				fmt.Sprintf("failed to check cancellation for job '%s'", job.ID), err))
		}
		if cancelled {
			job.CancelRequested = true
			return e.cancelJob(ctx, job)
		}

		end := job.ProcessedItems + job.Config.BatchSize
		if end > job.TotalItems {
			end = job.TotalItems
		}
		slice := job.Items[job.ProcessedItems:end]

		batchCtx, endBatchSpan := e.tracer.StartBatchSpan(ctx, job, batchIndex)
		for _, l := range e.batchListeners {
			l.BeforeBatch(batchCtx, job, batchIndex, len(slice))
		}

		batchStart := time.Now()
		results, sysErr := e.processor.ProcessSlice(batchCtx, job.Target, slice, op)

		if applyErr := job.ApplyBatchResults(results); applyErr != nil {
			endBatchSpan()
			return e.failJob(ctx, job, exception.NewSystemicError(moduleName,
				fmt.Sprintf("failed to record batch results for job '%s'", job.ID), applyErr))
		}
		if err := e.registry.UpdateJob(ctx, job); err != nil {
			endBatchSpan()
			return e.failJob(ctx, job, exception.NewSystemicError(moduleName,
				fmt.Sprintf("failed to persist progress for job '%s'", job.ID), err))
		}

		successful := 0
		for _, r := range results {
			e.recorder.RecordItemOutcome(batchCtx, job.Kind, r.Outcome)
			if r.Outcome == model.ItemOutcomeSuccess {
				successful++
			}
		}
		e.recorder.RecordBatch(batchCtx, job.Kind, len(results), successful)
		e.recorder.RecordDuration(batchCtx, "batch_duration", time.Since(batchStart),
			map[string]string{"kind": string(job.Kind)})

		for _, l := range e.batchListeners {
			l.AfterBatch(batchCtx, job, batchIndex, results)
		}
		endBatchSpan()

		if sysErr != nil {
			return e.failJob(ctx, job, sysErr)
		}

		batchIndex++

		if job.ProcessedItems < job.TotalItems && job.Config.DelayBetweenBatches > 0 {
			select {
			case <-ctx.Done():
				job.CancelRequested = true
				return e.cancelJob(ctx, job)
			case <-time.After(job.Config.DelayBetweenBatches):
			}
		}
	}

	return e.completeJob(ctx, job)
}

// cancelRequested re-reads the job's stored cancellation flag. The flag is
// checked at batch boundaries only; a batch in flight always finishes.
func (e *Executor) cancelRequested(ctx context.Context, jobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return true, nil
	}
	stored, err := e.registry.FindJobByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	return stored.CancelRequested, nil
}

func (e *Executor) completeJob(ctx context.Context, job *model.Job) error {
	if err := job.MarkAsCompleted(); err != nil {
		return err
	}
	if err := e.registry.UpdateJob(ctx, job); err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to persist completion of job '%s'", job.ID), err, false)
	}
	logger.Infof("Job '%s' completed: %d processed, %d successful, %d failed",
		job.ID, job.ProcessedItems, job.SuccessfulItems, job.FailedItems)
	e.finish(ctx, job)
	return nil
}

func (e *Executor) failJob(ctx context.Context, job *model.Job, cause error) error {
	e.tracer.RecordError(ctx, moduleName, cause)
	if err := job.MarkAsFailed(cause); err != nil {
		logger.Errorf("Job '%s' could not be marked failed: %v", job.ID, err)
		return cause
	}
	if err := e.registry.UpdateJob(ctx, job); err != nil {
		logger.Errorf("Failed to persist failure of job '%s': %v", job.ID, err)
	}
	logger.Errorf("Job '%s' failed after %d of %d items: %v", job.ID, job.ProcessedItems, job.TotalItems, cause)
	e.finish(ctx, job)
	return cause
}

func (e *Executor) cancelJob(ctx context.Context, job *model.Job) error {
	if err := job.MarkAsCancelled(); err != nil {
		return err
	}
	if err := e.registry.UpdateJob(ctx, job); err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to persist cancellation of job '%s'", job.ID), err, false)
	}
	e.recorder.RecordCancellation(ctx, job.Kind)
	logger.Infof("Job '%s' cancelled after %d of %d items", job.ID, job.ProcessedItems, job.TotalItems)
	e.finish(ctx, job)
	return nil
}

// finish emits the end-of-job notifications shared by all terminal paths.
func (e *Executor) finish(ctx context.Context, job *model.Job) {
	e.recorder.RecordJobEnd(ctx, job)
	if job.StartedAt != nil && job.CompletedAt != nil {
		e.recorder.RecordDuration(ctx, "job_duration", job.CompletedAt.Sub(*job.StartedAt),
			map[string]string{"kind": string(job.Kind), "status": string(job.Status)})
	}
	for _, l := range e.jobListeners {
		l.AfterJob(ctx, job)
	}
}
