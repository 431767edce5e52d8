// Package api exposes the job engine over HTTP: submission, query, control,
// export, and the Prometheus metrics endpoint.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	usecase "github.com/attestia/jobcore/pkg/jobs/core/application/usecase"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	export "github.com/attestia/jobcore/pkg/jobs/export"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// Handler bundles the HTTP handlers over the application services.
type Handler struct {
	submitter usecase.JobSubmitter
	explorer  usecase.JobExplorer
	operator  usecase.JobOperator
	exporter  *export.ResultsExporter
}

// NewHandler creates a Handler.
func NewHandler(submitter usecase.JobSubmitter, explorer usecase.JobExplorer, operator usecase.JobOperator, exporter *export.ResultsExporter) *Handler {
	return &Handler{submitter: submitter, explorer: explorer, operator: operator, exporter: exporter}
}

// --- Request / response DTOs ---

type certificateJobPayload struct {
	EventID           string  `json:"event_id" binding:"required"`
	TemplateID        string  `json:"template_id" binding:"required"`
	CertificateType   string  `json:"certificate_type"`
	MinimumAttendance float64 `json:"minimum_attendance_percentage"`
	BatchSize         int     `json:"batch_size"`
	DelayMs           int     `json:"delay_ms"`
}

type syncJobPayload struct {
	EventID   string `json:"event_id" binding:"required"`
	DeviceID  string `json:"device_id" binding:"required"`
	BatchID   string `json:"batch_id" binding:"required"`
	BatchSize int    `json:"batch_size"`
	DelayMs   int    `json:"delay_ms"`
}

type jobResponse struct {
	ID              string             `json:"id"`
	Kind            model.JobKind      `json:"kind"`
	Status          model.JobStatus    `json:"status"`
	Target          model.TargetRef    `json:"target"`
	TotalItems      int                `json:"total_items"`
	ProcessedItems  int                `json:"processed_items"`
	SuccessfulItems int                `json:"successful_items"`
	FailedItems     int                `json:"failed_items"`
	Errors          []string           `json:"errors,omitempty"`
	ItemResults     []model.ItemResult `json:"item_results,omitempty"`
	SourceJobID     string             `json:"source_job_id,omitempty"`
	RetryCount      int                `json:"retry_count,omitempty"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	ProgressPercent float64            `json:"progress_percent"`
	EtaSeconds      *float64           `json:"eta_seconds,omitempty"`
}

func toJobResponse(s *usecase.JobSnapshot, includeResults bool) jobResponse {
	job := s.Job
	resp := jobResponse{
		ID:              job.ID,
		Kind:            job.Kind,
		Status:          job.Status,
		Target:          job.Target,
		TotalItems:      job.TotalItems,
		ProcessedItems:  job.ProcessedItems,
		SuccessfulItems: job.SuccessfulItems,
		FailedItems:     job.FailedItems,
		Errors:          job.Errors,
		SourceJobID:     job.SourceJobID,
		RetryCount:      job.RetryCount,
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
		ProgressPercent: s.Progress.Percent,
	}
	if includeResults {
		resp.ItemResults = job.ItemResults
	}
	if s.Progress.EstimateKnown {
		eta := s.Progress.EstimatedRemaining.Seconds()
		resp.EtaSeconds = &eta
	}
	return resp
}

// --- Handlers ---

// SubmitCertificateJob handles POST /api/jobs/certificates.
func (h *Handler) SubmitCertificateJob(c *gin.Context) {
	var payload certificateJobPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.submitter.SubmitCertificateJob(c.Request.Context(), usecase.CertificateJobRequest{
		EventID:         payload.EventID,
		TemplateID:      payload.TemplateID,
		CertificateType: payload.CertificateType,
		Criteria:        model.EligibilityCriteria{MinimumAttendancePercentage: payload.MinimumAttendance},
		Config: model.JobConfig{
			BatchSize:           payload.BatchSize,
			DelayBetweenBatches: time.Duration(payload.DelayMs) * time.Millisecond,
		},
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": job.ID, "status": job.Status, "total_items": job.TotalItems})
}

// SubmitSyncJob handles POST /api/jobs/sync.
func (h *Handler) SubmitSyncJob(c *gin.Context) {
	var payload syncJobPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.submitter.SubmitSyncJob(c.Request.Context(), usecase.SyncJobRequest{
		EventID:  payload.EventID,
		DeviceID: payload.DeviceID,
		BatchID:  payload.BatchID,
		Config: model.JobConfig{
			BatchSize:           payload.BatchSize,
			DelayBetweenBatches: time.Duration(payload.DelayMs) * time.Millisecond,
		},
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": job.ID, "status": job.Status, "total_items": job.TotalItems})
}

// GetJob handles GET /api/jobs/:id.
func (h *Handler) GetJob(c *gin.Context) {
	snapshot, err := h.explorer.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobResponse(snapshot, true))
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	filter := repository.JobFilter{
		Kind:   model.JobKind(c.Query("kind")),
		Status: model.JobStatus(c.Query("status")),
	}
	if limit, ok := parseIntQuery(c, "limit"); ok {
		filter.Limit = limit
	}

	snapshots, err := h.explorer.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]jobResponse, len(snapshots))
	for i, s := range snapshots {
		out[i] = toJobResponse(s, false)
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out})
}

// CancelJob handles POST /api/jobs/:id/cancel.
func (h *Handler) CancelJob(c *gin.Context) {
	if err := h.operator.CancelJob(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancellation_requested"})
}

// RetryJob handles POST /api/jobs/:id/retry.
func (h *Handler) RetryJob(c *gin.Context) {
	job, err := h.operator.RetryJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"id":            job.ID,
		"source_job_id": job.SourceJobID,
		"retry_count":   job.RetryCount,
		"total_items":   job.TotalItems,
	})
}

// ExportJobResults handles GET /api/jobs/:id/export.
func (h *Handler) ExportJobResults(c *gin.Context) {
	path, err := h.exporter.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// writeError maps domain errors to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	case errors.Is(err, model.ErrNothingToRetry):
		c.JSON(http.StatusConflict, gin.H{"error": exception.ExtractErrorMessage(err)})
	case errors.Is(err, model.ErrInvalidJobState):
		c.JSON(http.StatusConflict, gin.H{"error": exception.ExtractErrorMessage(err)})
	case exception.IsBatchError(err) && !exception.IsSystemic(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": exception.ExtractErrorMessage(err)})
	default:
		logger.Errorf("Unhandled API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
