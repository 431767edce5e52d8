package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	usecase "github.com/attestia/jobcore/pkg/jobs/core/application/usecase"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
	batch "github.com/attestia/jobcore/pkg/jobs/engine/batch"
	eligibility "github.com/attestia/jobcore/pkg/jobs/engine/eligibility"
	executor "github.com/attestia/jobcore/pkg/jobs/engine/executor"
	progress "github.com/attestia/jobcore/pkg/jobs/engine/progress"
	retry "github.com/attestia/jobcore/pkg/jobs/engine/retry"
	inmemory "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/inmemory"
	factory "github.com/attestia/jobcore/pkg/jobs/test"
)

// harness wires the application services over an in-memory registry and
// fake collaborators.
type harness struct {
	registry     *inmemory.Registry
	participants *factory.FakeParticipantSource
	scans        *factory.FakeScanRecordSource
	certOp       *factory.FakeOperation
	syncOp       *factory.FakeOperation
	submitter    *usecase.SimpleJobSubmitter
	explorer     *usecase.SimpleJobExplorer
	operator     *usecase.DefaultJobOperator
}

func newHarness() *harness {
	registry := inmemory.NewRegistry()
	certOp := factory.NewFakeOperation(model.JobKindCertificateGeneration)
	syncOp := factory.NewFakeOperation(model.JobKindAttendanceSync)
	exec := executor.NewExecutor(
		registry,
		batch.NewProcessor(),
		[]port.ItemOperation{certOp, syncOp},
		nil,
		nil,
		coremetrics.NewNoOpMetricRecorder(),
		coremetrics.NewNoOpTracer(),
	)

	participants := &factory.FakeParticipantSource{}
	scans := &factory.FakeScanRecordSource{}
	engineCfg := &config.EngineConfig{DefaultBatchSize: 2}

	return &harness{
		registry:     registry,
		participants: participants,
		scans:        scans,
		certOp:       certOp,
		syncOp:       syncOp,
		submitter: usecase.NewSimpleJobSubmitter(
			registry, eligibility.NewEvaluator(), participants, scans, exec, engineCfg),
		explorer: usecase.NewSimpleJobExplorer(registry, progress.NewTracker()),
		operator: usecase.NewDefaultJobOperator(retry.NewCoordinator(registry, nil), exec),
	}
}

// waitTerminal polls the registry until the job settles.
func waitTerminal(t *testing.T, registry *inmemory.Registry, jobID string) *model.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := registry.FindJobByID(context.Background(), jobID)
		if err == nil && job.Status.IsTerminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job '%s' did not settle in time", jobID)
	return nil
}

func TestSubmitCertificateJob(t *testing.T) {
	h := newHarness()
	h.participants.Participants = []model.Participant{
		{ID: "p-1", AttendancePercent: 95},
		{ID: "p-2", AttendancePercent: 50},
		{ID: "p-3", AttendancePercent: 80},
	}

	job, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID:    "evt-1",
		TemplateID: "tpl-1",
		Criteria:   model.EligibilityCriteria{MinimumAttendancePercentage: 80},
	})
	assert.NoError(t, err)
	assert.Equal(t, model.JobKindCertificateGeneration, job.Kind)
	// Only the eligible participants made the work set.
	assert.Equal(t, 2, job.TotalItems)
	// Submission-time defaults come from the engine config.
	assert.Equal(t, 2, job.Config.BatchSize)

	settled := waitTerminal(t, h.registry, job.ID)
	assert.Equal(t, model.JobStatusCompleted, settled.Status)
	assert.Equal(t, 2, settled.SuccessfulItems)
}

func TestSubmitCertificateJobValidation(t *testing.T) {
	h := newHarness()

	_, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		TemplateID: "tpl-1",
	})
	assert.Error(t, err)

	_, err = h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID: "evt-1",
	})
	assert.Error(t, err)

	_, err = h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID:    "evt-1",
		TemplateID: "tpl-1",
		Criteria:   model.EligibilityCriteria{MinimumAttendancePercentage: 150},
	})
	assert.Error(t, err)
}

func TestSubmitCertificateJobSourceFailureRejectsSubmission(t *testing.T) {
	h := newHarness()
	h.participants.Err = errors.New("registration service down")

	_, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID:    "evt-1",
		TemplateID: "tpl-1",
	})
	assert.Error(t, err)

	// Nothing was persisted.
	jobs, _ := h.registry.ListJobs(context.Background(), repository.JobFilter{})
	assert.Empty(t, jobs)
}

func TestSubmitSyncJob(t *testing.T) {
	h := newHarness()
	h.scans.Records = []model.WorkItem{
		{ID: "scan-1", Attributes: map[string]string{"scanned_at": "2026-08-30T09:00:00Z"}},
		{ID: "scan-2"},
	}

	job, err := h.submitter.SubmitSyncJob(context.Background(), usecase.SyncJobRequest{
		EventID:  "evt-1",
		DeviceID: "dev-1",
		BatchID:  "batch-7",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.JobKindAttendanceSync, job.Kind)
	assert.Equal(t, "dev-1", job.Target.DeviceID)
	assert.Equal(t, 2, job.TotalItems)
	assert.Nil(t, job.Criteria)

	settled := waitTerminal(t, h.registry, job.ID)
	assert.Equal(t, model.JobStatusCompleted, settled.Status)
	assert.Equal(t, []string{"scan-1", "scan-2"}, h.syncOp.ExecutedItems())
}

func TestSubmitSyncJobValidation(t *testing.T) {
	h := newHarness()

	_, err := h.submitter.SubmitSyncJob(context.Background(), usecase.SyncJobRequest{
		EventID: "evt-1", DeviceID: "dev-1",
	})
	assert.Error(t, err)

	_, err = h.submitter.SubmitSyncJob(context.Background(), usecase.SyncJobRequest{
		DeviceID: "dev-1", BatchID: "batch-1",
	})
	assert.Error(t, err)
}

func TestGetJobSnapshot(t *testing.T) {
	h := newHarness()
	job := factory.NewTestJob(factory.NewTestItems(4), 4)
	assert.NoError(t, h.registry.SaveJob(context.Background(), job))

	snapshot, err := h.explorer.GetJob(context.Background(), job.ID)
	assert.NoError(t, err)
	assert.Equal(t, job.ID, snapshot.Job.ID)
	assert.Equal(t, float64(0), snapshot.Progress.Percent)
	assert.False(t, snapshot.Progress.EstimateKnown)

	_, err = h.explorer.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestListJobSnapshots(t *testing.T) {
	h := newHarness()
	assert.NoError(t, h.registry.SaveJob(context.Background(), factory.NewTestJob(factory.NewTestItems(1), 1)))
	assert.NoError(t, h.registry.SaveJob(context.Background(), factory.NewTestSyncJob(factory.NewTestItems(1), 1)))

	snapshots, err := h.explorer.ListJobs(context.Background(), repository.JobFilter{})
	assert.NoError(t, err)
	assert.Len(t, snapshots, 2)

	certs, err := h.explorer.ListJobs(context.Background(),
		repository.JobFilter{Kind: model.JobKindCertificateGeneration})
	assert.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestRetryJobRunsFailedSubset(t *testing.T) {
	h := newHarness()
	h.certOp.FailItems["p-2"] = true
	h.participants.Participants = []model.Participant{
		{ID: "p-1", AttendancePercent: 100},
		{ID: "p-2", AttendancePercent: 100},
		{ID: "p-3", AttendancePercent: 100},
	}

	job, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID: "evt-1", TemplateID: "tpl-1",
	})
	assert.NoError(t, err)

	settled := waitTerminal(t, h.registry, job.ID)
	assert.Equal(t, model.JobStatusCompleted, settled.Status)
	assert.Equal(t, 1, settled.FailedItems)

	// Let the failing item succeed this time.
	delete(h.certOp.FailItems, "p-2")

	retryJob, err := h.operator.RetryJob(context.Background(), job.ID)
	assert.NoError(t, err)
	assert.Equal(t, job.ID, retryJob.SourceJobID)
	assert.Equal(t, 1, retryJob.TotalItems)

	retrySettled := waitTerminal(t, h.registry, retryJob.ID)
	assert.Equal(t, model.JobStatusCompleted, retrySettled.Status)
	assert.Equal(t, 1, retrySettled.SuccessfulItems)

	// The source job keeps its original counters.
	srcAfter, _ := h.registry.FindJobByID(context.Background(), job.ID)
	assert.Equal(t, 1, srcAfter.FailedItems)
}

func TestRetryJobWithoutFailures(t *testing.T) {
	h := newHarness()
	h.participants.Participants = []model.Participant{{ID: "p-1", AttendancePercent: 100}}

	job, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID: "evt-1", TemplateID: "tpl-1",
	})
	assert.NoError(t, err)
	waitTerminal(t, h.registry, job.ID)

	_, err = h.operator.RetryJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, model.ErrNothingToRetry)
}

func TestCancelRunningJob(t *testing.T) {
	h := newHarness()

	var participants []model.Participant
	for _, item := range factory.NewTestItems(10) {
		participants = append(participants, model.Participant{ID: item.ID, AttendancePercent: 100})
	}
	h.participants.Participants = participants

	// Block the first batch mid-flight so the cancel is latched while it
	// is still running.
	started := make(chan struct{})
	release := make(chan struct{})
	h.certOp.BeforeItem = func(ctx context.Context, item model.WorkItem) {
		if item.ID == "item-1" {
			close(started)
			<-release
		}
	}

	job, err := h.submitter.SubmitCertificateJob(context.Background(), usecase.CertificateJobRequest{
		EventID: "evt-1", TemplateID: "tpl-1",
		Config: model.JobConfig{BatchSize: 2},
	})
	assert.NoError(t, err)

	<-started
	assert.NoError(t, h.operator.CancelJob(context.Background(), job.ID))
	close(release)

	settled := waitTerminal(t, h.registry, job.ID)
	assert.Equal(t, model.JobStatusCancelled, settled.Status)
	// The in-flight batch finished; the rest never ran.
	assert.Equal(t, 2, settled.ProcessedItems)
	assert.Len(t, settled.ItemResults, 2)
}
