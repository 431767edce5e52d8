package gorm

import (
	"time"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// JobEntity is the schema model used for persistence. List-valued fields are
// stored as JSON columns through their Valuer/Scanner implementations.
type JobEntity struct {
	ID     string          `gorm:"primaryKey;size:36"`
	Kind   model.JobKind   `gorm:"size:32;index"`
	Status model.JobStatus `gorm:"size:16;index"`

	Target model.TargetRef `gorm:"type:text"`
	// MinimumAttendancePct is the flattened eligibility criteria; NULL means
	// the job carries no criteria.
	MinimumAttendancePct *float64

	BatchSize           int
	DelayBetweenBatches int64

	Items model.WorkItemList `gorm:"type:text"`

	TotalItems      int
	ProcessedItems  int
	SuccessfulItems int
	FailedItems     int

	StartedAt   *time.Time
	CompletedAt *time.Time

	Errors      model.FailureList    `gorm:"type:text"`
	ItemResults model.ItemResultList `gorm:"type:text"`

	CancelRequested bool

	SourceJobID string `gorm:"size:36;index"`
	RetryCount  int

	CreateTime  time.Time `gorm:"index"`
	LastUpdated time.Time
	Version     int
}

func (JobEntity) TableName() string {
	return "jobcore_job"
}
