package gorm

import (
	"time"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// --- Mapper functions ---

func fromDomainJob(j *model.Job) *JobEntity {
	if j == nil {
		return nil
	}
	entity := &JobEntity{
		ID:                  j.ID,
		Kind:                j.Kind,
		Status:              j.Status,
		Target:              j.Target,
		BatchSize:           j.Config.BatchSize,
		DelayBetweenBatches: int64(j.Config.DelayBetweenBatches),
		Items:               j.Items,
		TotalItems:          j.TotalItems,
		ProcessedItems:      j.ProcessedItems,
		SuccessfulItems:     j.SuccessfulItems,
		FailedItems:         j.FailedItems,
		StartedAt:           j.StartedAt,
		CompletedAt:         j.CompletedAt,
		Errors:              j.Errors,
		ItemResults:         j.ItemResults,
		CancelRequested:     j.CancelRequested,
		SourceJobID:         j.SourceJobID,
		RetryCount:          j.RetryCount,
		CreateTime:          j.CreateTime,
		LastUpdated:         j.LastUpdated,
		Version:             j.Version,
	}
	if j.Criteria != nil {
		pct := j.Criteria.MinimumAttendancePercentage
		entity.MinimumAttendancePct = &pct
	}
	return entity
}

func toDomainJob(entity *JobEntity) *model.Job {
	if entity == nil {
		return nil
	}
	job := &model.Job{
		ID:     entity.ID,
		Kind:   entity.Kind,
		Status: entity.Status,
		Target: entity.Target,
		Config: model.JobConfig{
			BatchSize:           entity.BatchSize,
			DelayBetweenBatches: time.Duration(entity.DelayBetweenBatches),
		},
		Items:           entity.Items,
		TotalItems:      entity.TotalItems,
		ProcessedItems:  entity.ProcessedItems,
		SuccessfulItems: entity.SuccessfulItems,
		FailedItems:     entity.FailedItems,
		StartedAt:       entity.StartedAt,
		CompletedAt:     entity.CompletedAt,
		Errors:          entity.Errors,
		ItemResults:     entity.ItemResults,
		CancelRequested: entity.CancelRequested,
		SourceJobID:     entity.SourceJobID,
		RetryCount:      entity.RetryCount,
		CreateTime:      entity.CreateTime,
		LastUpdated:     entity.LastUpdated,
		Version:         entity.Version,
	}
	if entity.MinimumAttendancePct != nil {
		job.Criteria = &model.EligibilityCriteria{MinimumAttendancePercentage: *entity.MinimumAttendancePct}
	}
	return job
}
