package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	factory "github.com/attestia/jobcore/pkg/jobs/test"
)

func TestNewJob(t *testing.T) {
	items := factory.NewTestItems(3)
	job := factory.NewTestJob(items, 2)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, 3, job.TotalItems)
	assert.Equal(t, 0, job.ProcessedItems)
	assert.Equal(t, 1, job.Version)
	assert.Empty(t, job.ItemResults)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
}

func TestNewJobNormalizesConfig(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(1), 0)
	assert.Equal(t, model.DefaultBatchSize, job.Config.BatchSize)
}

func TestJobStateMachine(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(1), 1)

	// Pending jobs cannot finish directly.
	assert.ErrorIs(t, job.MarkAsCompleted(), model.ErrInvalidJobState)
	assert.ErrorIs(t, job.MarkAsCancelled(), model.ErrInvalidJobState)
	assert.Equal(t, model.JobStatusPending, job.Status)

	assert.NoError(t, job.MarkAsProcessing())
	assert.Equal(t, model.JobStatusProcessing, job.Status)
	assert.NotNil(t, job.StartedAt)

	// Processing jobs cannot start again.
	assert.ErrorIs(t, job.MarkAsProcessing(), model.ErrInvalidJobState)

	assert.NoError(t, job.MarkAsCompleted())
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)

	// Terminal states admit no further transitions.
	assert.ErrorIs(t, job.MarkAsFailed(errors.New("late")), model.ErrInvalidJobState)
	assert.ErrorIs(t, job.MarkAsCancelled(), model.ErrInvalidJobState)
}

func TestMarkAsFailedRecordsCause(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(1), 1)
	assert.NoError(t, job.MarkAsProcessing())
	assert.NoError(t, job.MarkAsFailed(errors.New("collaborator down")))

	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Contains(t, job.Errors, "collaborator down")
	assert.NotNil(t, job.CompletedAt)
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, model.JobStatusPending.IsTerminal())
	assert.False(t, model.JobStatusProcessing.IsTerminal())
	assert.True(t, model.JobStatusCompleted.IsTerminal())
	assert.True(t, model.JobStatusFailed.IsTerminal())
	assert.True(t, model.JobStatusCancelled.IsTerminal())
}

func TestApplyBatchResults(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(4), 2)
	assert.NoError(t, job.MarkAsProcessing())

	err := job.ApplyBatchResults([]model.ItemResult{
		{ItemID: "item-1", Outcome: model.ItemOutcomeSuccess, Detail: "cert-1"},
		{ItemID: "item-2", Outcome: model.ItemOutcomeFailure, Error: "rejected"},
	})
	assert.NoError(t, err)

	assert.Equal(t, 2, job.ProcessedItems)
	assert.Equal(t, 1, job.SuccessfulItems)
	assert.Equal(t, 1, job.FailedItems)
	assert.Equal(t, job.SuccessfulItems+job.FailedItems, job.ProcessedItems)
	assert.Len(t, job.ItemResults, 2)
	assert.Equal(t, "item-1", job.ItemResults[0].ItemID)
	assert.Equal(t, "item-2", job.ItemResults[1].ItemID)
}

func TestApplyBatchResultsRejectsOverflow(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(1), 1)
	assert.NoError(t, job.MarkAsProcessing())

	err := job.ApplyBatchResults([]model.ItemResult{
		{ItemID: "item-1", Outcome: model.ItemOutcomeSuccess},
		{ItemID: "item-x", Outcome: model.ItemOutcomeSuccess},
	})
	assert.ErrorIs(t, err, model.ErrInvalidJobState)
	// Counters untouched on rejection.
	assert.Equal(t, 0, job.ProcessedItems)
	assert.Empty(t, job.ItemResults)
}

func TestFailedItemIDsPreservesOrder(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(4), 4)
	assert.NoError(t, job.MarkAsProcessing())
	assert.NoError(t, job.ApplyBatchResults([]model.ItemResult{
		{ItemID: "item-1", Outcome: model.ItemOutcomeFailure, Error: "a"},
		{ItemID: "item-2", Outcome: model.ItemOutcomeSuccess},
		{ItemID: "item-3", Outcome: model.ItemOutcomeFailure, Error: "b"},
		{ItemID: "item-4", Outcome: model.ItemOutcomeSuccess},
	}))

	assert.Equal(t, []string{"item-1", "item-3"}, job.FailedItemIDs())
}

func TestAddFailureDeduplicates(t *testing.T) {
	job := factory.NewTestJob(factory.NewTestItems(1), 1)
	job.AddFailure("boom")
	job.AddFailure("boom")
	job.AddFailure("other")

	assert.Equal(t, model.FailureList{"boom", "other"}, job.Errors)
}

func TestCloneIsDeep(t *testing.T) {
	items := []model.WorkItem{{ID: "p-1", Attributes: map[string]string{"email": "a@example.com"}}}
	criteria := &model.EligibilityCriteria{MinimumAttendancePercentage: 80}
	job := model.NewJob(model.JobKindCertificateGeneration,
		model.TargetRef{EventID: "evt-1"}, criteria, model.JobConfig{BatchSize: 1}, items)
	assert.NoError(t, job.MarkAsProcessing())
	assert.NoError(t, job.ApplyBatchResults([]model.ItemResult{
		{ItemID: "p-1", Outcome: model.ItemOutcomeFailure, Error: "rejected"},
	}))

	clone := job.Clone()
	clone.Items[0].Attributes["email"] = "tampered"
	clone.ItemResults[0].Error = "tampered"
	clone.Criteria.MinimumAttendancePercentage = 0
	*clone.StartedAt = clone.StartedAt.AddDate(1, 0, 0)

	assert.Equal(t, "a@example.com", job.Items[0].Attributes["email"])
	assert.Equal(t, "rejected", job.ItemResults[0].Error)
	assert.Equal(t, float64(80), job.Criteria.MinimumAttendancePercentage)
	assert.NotEqual(t, job.StartedAt, clone.StartedAt)
}

func TestEligibilityCriteriaValidate(t *testing.T) {
	assert.NoError(t, model.EligibilityCriteria{MinimumAttendancePercentage: 0}.Validate())
	assert.NoError(t, model.EligibilityCriteria{MinimumAttendancePercentage: 100}.Validate())
	assert.Error(t, model.EligibilityCriteria{MinimumAttendancePercentage: -1}.Validate())
	assert.Error(t, model.EligibilityCriteria{MinimumAttendancePercentage: 101}.Validate())
}

func TestJobConfigNormalize(t *testing.T) {
	cfg := model.JobConfig{BatchSize: -5, DelayBetweenBatches: -1}.Normalize()
	assert.Equal(t, model.DefaultBatchSize, cfg.BatchSize)
	assert.Zero(t, cfg.DelayBetweenBatches)

	kept := model.JobConfig{BatchSize: 10}.Normalize()
	assert.Equal(t, 10, kept.BatchSize)
}

func TestItemResultListRoundTrip(t *testing.T) {
	list := model.ItemResultList{
		{ItemID: "item-1", Outcome: model.ItemOutcomeSuccess, Detail: "cert-1"},
		{ItemID: "item-2", Outcome: model.ItemOutcomeFailure, Error: "rejected"},
	}

	value, err := list.Value()
	assert.NoError(t, err)

	var decoded model.ItemResultList
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)

	var fromNil model.ItemResultList
	assert.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)
}

func TestTargetRefRoundTrip(t *testing.T) {
	ref := model.TargetRef{EventID: "evt-1", DeviceID: "dev-1", BatchID: "batch-1"}

	value, err := ref.Value()
	assert.NoError(t, err)

	var decoded model.TargetRef
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, ref, decoded)
}
