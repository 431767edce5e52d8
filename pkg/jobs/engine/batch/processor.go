// Package batch processes one slice of a job's work items through its
// per-item operation.
package batch

import (
	"context"
	"fmt"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const moduleName = "batch_processor"

// Processor runs a job's per-item operation over one batch of items,
// sequentially and in order.
type Processor struct{}

// NewProcessor creates a new Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// ProcessSlice executes op for each item in order and returns one result per
// processed item. Item-level failures are recorded in the results and do not
// stop the slice. A systemic failure stops the slice immediately: the results
// accumulated so far are returned together with the error, so the caller can
// persist partial progress before failing the job.
func (p *Processor) ProcessSlice(ctx context.Context, target model.TargetRef, items []model.WorkItem, op port.ItemOperation) ([]model.ItemResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]model.ItemResult, 0, len(items))
	for _, item := range items {
		detail, err := p.executeOne(ctx, target, item, op)
		if err != nil {
			if exception.IsSystemic(err) {
				logger.Errorf("Systemic failure while processing item '%s': %v", item.ID, err)
				return results, exception.NewBatchError(moduleName,
					fmt.Sprintf("operation infrastructure failed at item '%s'", item.ID), err, true)
			}
			results = append(results, model.ItemResult{
				ItemID:  item.ID,
				Outcome: model.ItemOutcomeFailure,
				Error:   exception.ExtractErrorMessage(err),
			})
			continue
		}
		results = append(results, model.ItemResult{
			ItemID:  item.ID,
			Outcome: model.ItemOutcomeSuccess,
			Detail:  detail,
		})
	}
	return results, nil
}

// executeOne runs the operation for a single item, converting a panic in the
// operation into an ordinary item failure.
func (p *Processor) executeOne(ctx context.Context, target model.TargetRef, item model.WorkItem, op port.ItemOperation) (detail string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Recovered from panic while processing item '%s': %v", item.ID, r)
			err = fmt.Errorf("panic during item processing: %v", r)
		}
	}()
	return op.Execute(ctx, target, item)
}
