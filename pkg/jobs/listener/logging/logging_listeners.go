// Package logging provides listeners that log job and batch lifecycle events.
package logging

import (
	"context"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// --- Job Execution Listener ---

type LoggingJobListener struct{}

func NewLoggingJobListener() port.JobExecutionListener {
	return &LoggingJobListener{}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, job *model.Job) {
	logger.Infof("JobExecutionListener: BeforeJob - ID: %s, Kind: %s, Event: %s, Items: %d",
		job.ID, job.Kind, job.Target.EventID, job.TotalItems)
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, job *model.Job) {
	logger.Infof("JobExecutionListener: AfterJob - ID: %s, Status: %s, Processed: %d/%d, Failed: %d",
		job.ID, job.Status, job.ProcessedItems, job.TotalItems, job.FailedItems)
}

var _ port.JobExecutionListener = (*LoggingJobListener)(nil)

// --- Batch Listener ---

type LoggingBatchListener struct{}

func NewLoggingBatchListener() port.BatchListener {
	return &LoggingBatchListener{}
}

func (l *LoggingBatchListener) BeforeBatch(ctx context.Context, job *model.Job, batchIndex int, size int) {
	logger.Debugf("BatchListener: BeforeBatch - Job: %s, Batch: %d, Size: %d", job.ID, batchIndex, size)
}

func (l *LoggingBatchListener) AfterBatch(ctx context.Context, job *model.Job, batchIndex int, results []model.ItemResult) {
	failed := 0
	for _, r := range results {
		if r.Outcome == model.ItemOutcomeFailure {
			failed++
		}
	}
	logger.Debugf("BatchListener: AfterBatch - Job: %s, Batch: %d, Results: %d, Failed: %d",
		job.ID, batchIndex, len(results), failed)
}

var _ port.BatchListener = (*LoggingBatchListener)(nil)
