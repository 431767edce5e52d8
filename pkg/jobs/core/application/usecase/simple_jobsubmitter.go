package usecase

import (
	"context"
	"fmt"
	"time"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	eligibility "github.com/attestia/jobcore/pkg/jobs/engine/eligibility"
	executor "github.com/attestia/jobcore/pkg/jobs/engine/executor"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const submitterModule = "job_submitter"

// SimpleJobSubmitter is the default implementation of JobSubmitter. It
// resolves the work set at submission, persists the job as pending, and runs
// it on a background goroutine.
type SimpleJobSubmitter struct {
	registry     repository.JobRegistry
	evaluator    *eligibility.Evaluator
	participants port.ParticipantSource
	scans        port.ScanRecordSource
	executor     *executor.Executor
	engineCfg    *config.EngineConfig
}

var _ JobSubmitter = (*SimpleJobSubmitter)(nil)

// NewSimpleJobSubmitter creates a new SimpleJobSubmitter.
func NewSimpleJobSubmitter(
	registry repository.JobRegistry,
	evaluator *eligibility.Evaluator,
	participants port.ParticipantSource,
	scans port.ScanRecordSource,
	exec *executor.Executor,
	engineCfg *config.EngineConfig,
) *SimpleJobSubmitter {
	return &SimpleJobSubmitter{
		registry:     registry,
		evaluator:    evaluator,
		participants: participants,
		scans:        scans,
		executor:     exec,
		engineCfg:    engineCfg,
	}
}

// SubmitCertificateJob implements JobSubmitter. The work set is the event's
// participants filtered by the eligibility criteria, fixed at submission.
func (s *SimpleJobSubmitter) SubmitCertificateJob(ctx context.Context, req CertificateJobRequest) (*model.Job, error) {
	if req.EventID == "" {
		return nil, exception.NewBatchErrorf(submitterModule, "event ID is required")
	}
	if req.TemplateID == "" {
		return nil, exception.NewBatchErrorf(submitterModule, "template ID is required")
	}
	if err := req.Criteria.Validate(); err != nil {
		return nil, exception.NewBatchError(submitterModule, "invalid eligibility criteria", err, false)
	}

	participants, err := s.participants.FetchParticipants(ctx, req.EventID)
	if err != nil {
		return nil, exception.NewBatchError(submitterModule,
			fmt.Sprintf("failed to fetch participants for event '%s'", req.EventID), err, false)
	}

	criteria := req.Criteria
	items := s.evaluator.Evaluate(participants, &criteria)

	target := model.TargetRef{
		EventID:         req.EventID,
		TemplateID:      req.TemplateID,
		CertificateType: req.CertificateType,
	}
	job := model.NewJob(model.JobKindCertificateGeneration, target, &criteria, s.applyDefaults(req.Config), items)

	return s.saveAndLaunch(ctx, job, len(participants))
}

// SubmitSyncJob implements JobSubmitter. The work set is the scan records of
// one uploaded device batch.
func (s *SimpleJobSubmitter) SubmitSyncJob(ctx context.Context, req SyncJobRequest) (*model.Job, error) {
	if req.EventID == "" {
		return nil, exception.NewBatchErrorf(submitterModule, "event ID is required")
	}
	if req.DeviceID == "" {
		return nil, exception.NewBatchErrorf(submitterModule, "device ID is required")
	}
	if req.BatchID == "" {
		return nil, exception.NewBatchErrorf(submitterModule, "batch ID is required")
	}

	records, err := s.scans.FetchScanRecords(ctx, req.DeviceID, req.BatchID)
	if err != nil {
		return nil, exception.NewBatchError(submitterModule,
			fmt.Sprintf("failed to fetch scan records for device '%s' batch '%s'", req.DeviceID, req.BatchID), err, false)
	}

	target := model.TargetRef{
		EventID:  req.EventID,
		DeviceID: req.DeviceID,
		BatchID:  req.BatchID,
	}
	job := model.NewJob(model.JobKindAttendanceSync, target, nil, s.applyDefaults(req.Config), records)

	return s.saveAndLaunch(ctx, job, len(records))
}

// applyDefaults fills unset submission config fields from the engine
// configuration.
func (s *SimpleJobSubmitter) applyDefaults(cfg model.JobConfig) model.JobConfig {
	if cfg.BatchSize <= 0 && s.engineCfg != nil && s.engineCfg.DefaultBatchSize > 0 {
		cfg.BatchSize = s.engineCfg.DefaultBatchSize
	}
	if cfg.DelayBetweenBatches <= 0 && s.engineCfg != nil && s.engineCfg.DefaultDelayMs > 0 {
		cfg.DelayBetweenBatches = time.Duration(s.engineCfg.DefaultDelayMs) * time.Millisecond
	}
	return cfg.Normalize()
}

// saveAndLaunch persists the pending job and starts it on a background
// goroutine. Execution outlives the submission request's context.
func (s *SimpleJobSubmitter) saveAndLaunch(ctx context.Context, job *model.Job, populationSize int) (*model.Job, error) {
	if err := s.registry.SaveJob(ctx, job); err != nil {
		return nil, exception.NewBatchError(submitterModule,
			fmt.Sprintf("failed to save job for event '%s'", job.Target.EventID), err, false)
	}

	logger.Infof("Job '%s' (%s) submitted: %d of %d candidates in work set",
		job.ID, job.Kind, job.TotalItems, populationSize)

	runCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.executor.Run(runCtx, job.ID); err != nil {
			logger.Errorf("Job '%s' run finished with error: %v", job.ID, err)
		}
	}()

	return job.Clone(), nil
}
