// Package model defines the domain model of the job orchestration engine:
// jobs, work items, item results, eligibility criteria, and the job state
// machine with its allowed transitions.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the execution state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether the status is a final state.
// Terminal jobs never transition again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// JobKind identifies the type of bulk work a job performs.
type JobKind string

const (
	// JobKindCertificateGeneration issues certificates for each eligible
	// participant of an event.
	JobKindCertificateGeneration JobKind = "CERTIFICATE_GENERATION"
	// JobKindAttendanceSync applies offline attendance scan records
	// collected by a check-in device.
	JobKindAttendanceSync JobKind = "ATTENDANCE_SYNC"
)

// ItemOutcome is the per-item result classification.
type ItemOutcome string

const (
	ItemOutcomeSuccess ItemOutcome = "SUCCESS"
	ItemOutcomeFailure ItemOutcome = "FAILURE"
)

// WorkItem is one unit of work within a job, e.g. a single participant to
// issue a certificate for, or a single scan record to apply.
type WorkItem struct {
	// ID identifies the item within its job (participant ID, scan record ID).
	ID string `json:"id"`
	// Attributes carries item payload the operation needs (e.g. scan
	// timestamp, participant email).
	Attributes map[string]string `json:"attributes,omitempty"`
}

// WorkItemList is a slice of work items persistable as a single JSON column.
type WorkItemList []WorkItem

// Value implements driver.Valuer, serializing the list to JSON.
func (l WorkItemList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WorkItemList to JSON: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the list from JSON.
func (l *WorkItemList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported type for WorkItemList: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// ItemResult records the outcome of processing a single work item.
type ItemResult struct {
	// ItemID is the ID of the processed work item.
	ItemID string `json:"item_id"`
	// Outcome is SUCCESS or FAILURE.
	Outcome ItemOutcome `json:"outcome"`
	// Error holds the failure message for FAILURE outcomes.
	Error string `json:"error,omitempty"`
	// Detail carries operation output for SUCCESS outcomes, e.g. the ID of
	// the certificate that was issued.
	Detail string `json:"detail,omitempty"`
}

// ItemResultList is an append-only, ordered list of per-item results.
type ItemResultList []ItemResult

// Value implements driver.Valuer, serializing the list to JSON.
func (l ItemResultList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ItemResultList to JSON: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the list from JSON.
func (l *ItemResultList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported type for ItemResultList: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// FailureList is a slice of job-level error messages persistable as JSON.
type FailureList []string

// Value implements driver.Valuer, serializing the list to JSON.
func (l FailureList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal FailureList to JSON: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the list from JSON.
func (l *FailureList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported type for FailureList: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// TargetRef identifies the entities a job operates against.
type TargetRef struct {
	// EventID is the event the job belongs to. Set for both kinds.
	EventID string `json:"event_id"`
	// TemplateID selects the certificate template. Certificate jobs only.
	TemplateID string `json:"template_id,omitempty"`
	// CertificateType distinguishes e.g. attendance vs completion
	// certificates. Certificate jobs only.
	CertificateType string `json:"certificate_type,omitempty"`
	// DeviceID is the check-in device the scans came from. Sync jobs only.
	DeviceID string `json:"device_id,omitempty"`
	// BatchID identifies the offline scan batch being synced. Sync jobs only.
	BatchID string `json:"batch_id,omitempty"`
}

// Value implements driver.Valuer, serializing the reference to JSON.
func (t TargetRef) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TargetRef to JSON: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the reference from JSON.
func (t *TargetRef) Scan(value interface{}) error {
	if value == nil {
		*t = TargetRef{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported type for TargetRef: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, t)
}

// Participant is an event participant considered for certificate issuance.
type Participant struct {
	// ID is the participant's registration ID.
	ID string
	// AttendancePercent is the participant's recorded attendance, 0 to 100.
	AttendancePercent float64
	// Attributes carries extra payload forwarded to the issued work item.
	Attributes map[string]string
}

// EligibilityCriteria filters which participants a certificate job covers.
type EligibilityCriteria struct {
	// MinimumAttendancePercentage is the inclusive lower bound a
	// participant's attendance must meet, 0 to 100.
	MinimumAttendancePercentage float64 `json:"minimum_attendance_percentage"`
}

// Validate checks that the criteria values are within their allowed ranges.
func (c EligibilityCriteria) Validate() error {
	if c.MinimumAttendancePercentage < 0 || c.MinimumAttendancePercentage > 100 {
		return fmt.Errorf("minimum attendance percentage must be between 0 and 100, got %v", c.MinimumAttendancePercentage)
	}
	return nil
}

// JobConfig holds per-job execution tuning.
type JobConfig struct {
	// BatchSize is the number of items processed between bookkeeping
	// updates and cancellation checks.
	BatchSize int `json:"batch_size"`
	// DelayBetweenBatches is an optional pause after each batch, used to
	// throttle load on collaborator services.
	DelayBetweenBatches time.Duration `json:"delay_between_batches"`
}

// DefaultBatchSize is applied when a submission does not specify one.
const DefaultBatchSize = 50

// Normalize fills in defaults for unset config fields.
func (c JobConfig) Normalize() JobConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.DelayBetweenBatches < 0 {
		c.DelayBetweenBatches = 0
	}
	return c
}

// Job is the aggregate root of the engine: one bulk operation over a fixed
// set of work items, with live progress counters and per-item results.
type Job struct {
	ID       string               `json:"id"`
	Kind     JobKind              `json:"kind"`
	Target   TargetRef            `json:"target"`
	Criteria *EligibilityCriteria `json:"criteria,omitempty"`
	Config   JobConfig            `json:"config"`

	// Items is the immutable work set, fixed at submission.
	Items WorkItemList `json:"items"`

	// Counters. processed == successful + failed <= total at all times.
	TotalItems      int `json:"total_items"`
	ProcessedItems  int `json:"processed_items"`
	SuccessfulItems int `json:"successful_items"`
	FailedItems     int `json:"failed_items"`

	Status      JobStatus  `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Errors holds job-level (systemic) error messages.
	Errors FailureList `json:"errors"`
	// ItemResults is append-only, in processing order.
	ItemResults ItemResultList `json:"item_results"`

	// CancelRequested is the cooperative cancellation flag, observed by the
	// executor at batch boundaries.
	CancelRequested bool `json:"cancel_requested"`

	// SourceJobID links a retry job back to the job it was created from.
	SourceJobID string `json:"source_job_id,omitempty"`
	// RetryCount is how many retries deep this job's lineage is.
	RetryCount int `json:"retry_count"`

	CreateTime  time.Time `json:"create_time"`
	LastUpdated time.Time `json:"last_updated"`
	// Version is the optimistic locking counter, bumped on every update.
	Version int `json:"version"`
}

// NewJob creates a job in the pending state with a generated ID.
func NewJob(kind JobKind, target TargetRef, criteria *EligibilityCriteria, config JobConfig, items []WorkItem) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.New().String(),
		Kind:        kind,
		Target:      target,
		Criteria:    criteria,
		Config:      config.Normalize(),
		Items:       append(WorkItemList(nil), items...),
		TotalItems:  len(items),
		Status:      JobStatusPending,
		Errors:      FailureList{},
		ItemResults: ItemResultList{},
		CreateTime:  now,
		LastUpdated: now,
		Version:     1,
	}
}

// isValidTransition defines the job state machine. Pending jobs may only
// start processing; processing jobs may only finish, fail, or be cancelled.
func isValidTransition(current, next JobStatus) bool {
	switch current {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		switch next {
		case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
			return true
		}
		return false
	default:
		// Terminal states allow no further transitions.
		return false
	}
}

// TransitionTo moves the job to the new status, rejecting transitions the
// state machine does not allow.
func (j *Job) TransitionTo(next JobStatus) error {
	if !isValidTransition(j.Status, next) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidJobState, j.Status, next)
	}
	j.Status = next
	j.LastUpdated = time.Now()
	return nil
}

// MarkAsProcessing starts the job, recording its start time.
func (j *Job) MarkAsProcessing() error {
	if err := j.TransitionTo(JobStatusProcessing); err != nil {
		return err
	}
	if j.StartedAt == nil {
		now := time.Now()
		j.StartedAt = &now
	}
	return nil
}

// MarkAsCompleted finishes the job. A job completes even when every item
// failed; item failures never fail the job itself.
func (j *Job) MarkAsCompleted() error {
	if err := j.TransitionTo(JobStatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	j.CompletedAt = &now
	return nil
}

// MarkAsFailed fails the job with a systemic error, preserving any partial
// per-item results accumulated so far.
func (j *Job) MarkAsFailed(err error) error {
	if terr := j.TransitionTo(JobStatusFailed); terr != nil {
		return terr
	}
	now := time.Now()
	j.CompletedAt = &now
	if err != nil {
		j.AddFailure(err.Error())
	}
	return nil
}

// MarkAsCancelled stops the job in response to a cancellation request,
// preserving partial results.
func (j *Job) MarkAsCancelled() error {
	if err := j.TransitionTo(JobStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	j.CompletedAt = &now
	return nil
}

// AddFailure appends a job-level error message, skipping duplicates.
func (j *Job) AddFailure(msg string) {
	for _, existing := range j.Errors {
		if existing == msg {
			return
		}
	}
	j.Errors = append(j.Errors, msg)
	j.LastUpdated = time.Now()
}

// ApplyBatchResults appends a batch's per-item results and advances the
// counters. Counters only move forward; processed never exceeds total.
func (j *Job) ApplyBatchResults(results []ItemResult) error {
	if j.ProcessedItems+len(results) > j.TotalItems {
		return fmt.Errorf("%w: applying %d results would exceed total of %d (processed %d)",
			ErrInvalidJobState, len(results), j.TotalItems, j.ProcessedItems)
	}
	for _, r := range results {
		j.ItemResults = append(j.ItemResults, r)
		j.ProcessedItems++
		if r.Outcome == ItemOutcomeSuccess {
			j.SuccessfulItems++
		} else {
			j.FailedItems++
		}
	}
	j.LastUpdated = time.Now()
	return nil
}

// FailedItemIDs returns the IDs of items that failed, in processing order.
func (j *Job) FailedItemIDs() []string {
	var ids []string
	for _, r := range j.ItemResults {
		if r.Outcome == ItemOutcomeFailure {
			ids = append(ids, r.ItemID)
		}
	}
	return ids
}

// Clone returns a deep copy of the job, so registry reads cannot alias
// internal state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Criteria != nil {
		crit := *j.Criteria
		c.Criteria = &crit
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	c.Items = make(WorkItemList, len(j.Items))
	for i, it := range j.Items {
		c.Items[i] = it
		if it.Attributes != nil {
			attrs := make(map[string]string, len(it.Attributes))
			for k, v := range it.Attributes {
				attrs[k] = v
			}
			c.Items[i].Attributes = attrs
		}
	}
	c.Errors = append(FailureList(nil), j.Errors...)
	c.ItemResults = append(ItemResultList(nil), j.ItemResults...)
	return &c
}
