// Package gorm provides a JobRegistry persisted through GORM. Concrete
// database drivers live in subpackages and register themselves via
// RegisterDialector.
package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const moduleName = "gorm_registry"

// Registry is a SQL-backed JobRegistry.
type Registry struct {
	db *gorm.DB
}

var _ repository.JobRegistry = (*Registry)(nil)

// NewRegistry opens the database for the given driver and DSN and migrates
// the job table.
func NewRegistry(driver, dsn string) (*Registry, error) {
	dialector, err := OpenDialector(driver, dsn)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to resolve database driver", err, false)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to open %s database", driver), err, false)
	}

	if err := db.AutoMigrate(&JobEntity{}); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to migrate job table", err, false)
	}

	logger.Infof("Job registry opened: driver=%s", driver)
	return &Registry{db: db}, nil
}

// SaveJob implements repository.JobRegistry.
func (r *Registry) SaveJob(ctx context.Context, job *model.Job) error {
	entity := fromDomainJob(job)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to save job '%s'", job.ID), err, false)
	}
	return nil
}

// UpdateJob implements repository.JobRegistry. The update is guarded by the
// version column; zero affected rows means a concurrent writer won or the job
// is gone. The stored cancel_requested flag is ORed in so a latched cancel
// survives progress writes.
func (r *Registry) UpdateJob(ctx context.Context, job *model.Job) error {
	entity := fromDomainJob(job)
	newVersion := job.Version + 1

	res := r.db.WithContext(ctx).Model(&JobEntity{}).
		Where("id = ? AND version = ?", job.ID, job.Version).
		Updates(map[string]interface{}{
			"status":                entity.Status,
			"processed_items":       entity.ProcessedItems,
			"successful_items":      entity.SuccessfulItems,
			"failed_items":          entity.FailedItems,
			"started_at":            entity.StartedAt,
			"completed_at":          entity.CompletedAt,
			"errors":                entity.Errors,
			"item_results":          entity.ItemResults,
			"cancel_requested":      gorm.Expr("cancel_requested OR ?", entity.CancelRequested),
			"last_updated":          entity.LastUpdated,
			"version":               newVersion,
		})
	if res.Error != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to update job '%s'", job.ID), res.Error, false)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&JobEntity{}).Where("id = ?", job.ID).Count(&count).Error; err == nil && count == 0 {
			return repository.ErrJobNotFound
		}
		return fmt.Errorf("optimistic lock failure for job '%s' at version %d", job.ID, job.Version)
	}

	job.Version = newVersion
	stored, err := r.FindJobByID(ctx, job.ID)
	if err == nil && stored.CancelRequested {
		job.CancelRequested = true
	}
	return nil
}

// FindJobByID implements repository.JobRegistry.
func (r *Registry) FindJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var entity JobEntity
	err := r.db.WithContext(ctx).First(&entity, "id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrJobNotFound
		}
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}
	return toDomainJob(&entity), nil
}

// ListJobs implements repository.JobRegistry.
func (r *Registry) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	q := r.db.WithContext(ctx).Model(&JobEntity{}).Order("create_time DESC, id DESC")
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var entities []JobEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to list jobs", err, false)
	}

	jobs := make([]*model.Job, len(entities))
	for i := range entities {
		jobs[i] = toDomainJob(&entities[i])
	}
	return jobs, nil
}

// RequestCancel implements repository.JobRegistry. The flag is latched with
// a status-guarded update that does not touch the version column.
func (r *Registry) RequestCancel(ctx context.Context, jobID string) error {
	res := r.db.WithContext(ctx).Model(&JobEntity{}).
		Where("id = ? AND status = ?", jobID, model.JobStatusProcessing).
		Update("cancel_requested", true)
	if res.Error != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to request cancel for job '%s'", jobID), res.Error, false)
	}
	if res.RowsAffected == 0 {
		stored, err := r.FindJobByID(ctx, jobID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: job '%s' is %s, only processing jobs can be cancelled",
			model.ErrInvalidJobState, jobID, stored.Status)
	}
	return nil
}

// Close implements repository.JobRegistry.
func (r *Registry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
