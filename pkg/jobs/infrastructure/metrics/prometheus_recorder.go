// Package metrics provides the Prometheus and OpenTelemetry backed
// implementations of the engine's metric and tracing interfaces.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of
// coremetrics.MetricRecorder.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	jobDurationSeconds *prometheus.HistogramVec
	jobStatusCounter   *prometheus.CounterVec
	jobCancellations   *prometheus.CounterVec

	batchProcessedTotal *prometheus.CounterVec
	itemOutcomeCounter  *prometheus.CounterVec

	operationDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a PrometheusRecorder with its own registry,
// including the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobcore_job_duration_seconds",
			Help:    "Duration of job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_job_status_total",
			Help: "Total number of job runs by kind and status.",
		}, []string{"kind", "status"}),
		jobCancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_job_cancellations_total",
			Help: "Total number of cancelled jobs by kind.",
		}, []string{"kind"}),
		batchProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_batch_items_total",
			Help: "Total items processed per batch by kind and result.",
		}, []string{"kind", "result"}),
		itemOutcomeCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_item_outcome_total",
			Help: "Total item outcomes by kind.",
		}, []string{"kind", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobcore_operation_duration_seconds",
			Help:    "Duration of named engine operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"name", "kind"}),
	}

	registry.MustRegister(r.jobDurationSeconds)
	registry.MustRegister(r.jobStatusCounter)
	registry.MustRegister(r.jobCancellations)
	registry.MustRegister(r.batchProcessedTotal)
	registry.MustRegister(r.itemOutcomeCounter)
	registry.MustRegister(r.operationDuration)

	return r
}

// GetRegistry returns the Prometheus registry, for exposing via an HTTP
// handler.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordJobStart implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, job *model.Job) {
	r.jobStatusCounter.WithLabelValues(string(job.Kind), string(job.Status)).Inc()
	logger.Debugf("Metrics: job '%s' started", job.ID)
}

// RecordJobEnd implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, job *model.Job) {
	r.jobStatusCounter.WithLabelValues(string(job.Kind), string(job.Status)).Inc()
	if job.StartedAt != nil && job.CompletedAt != nil {
		duration := job.CompletedAt.Sub(*job.StartedAt).Seconds()
		r.jobDurationSeconds.WithLabelValues(string(job.Kind), string(job.Status)).Observe(duration)
		logger.Debugf("Metrics: job '%s' ended as %s after %.3fs", job.ID, job.Status, duration)
	}
}

// RecordBatch implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordBatch(ctx context.Context, kind model.JobKind, processed, successful int) {
	r.batchProcessedTotal.WithLabelValues(string(kind), "processed").Add(float64(processed))
	r.batchProcessedTotal.WithLabelValues(string(kind), "successful").Add(float64(successful))
}

// RecordItemOutcome implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordItemOutcome(ctx context.Context, kind model.JobKind, outcome model.ItemOutcome) {
	r.itemOutcomeCounter.WithLabelValues(string(kind), string(outcome)).Inc()
}

// RecordCancellation implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordCancellation(ctx context.Context, kind model.JobKind) {
	r.jobCancellations.WithLabelValues(string(kind)).Inc()
}

// RecordDuration implements coremetrics.MetricRecorder.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDuration.WithLabelValues(name, tags["kind"]).Observe(duration.Seconds())
}

var _ coremetrics.MetricRecorder = (*PrometheusRecorder)(nil)
