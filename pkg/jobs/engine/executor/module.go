package executor

import (
	"go.uber.org/fx"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
	batchpkg "github.com/attestia/jobcore/pkg/jobs/engine/batch"
)

// ExecutorParams defines the dependencies for NewExecutorProvider. Item
// operations and listeners are collected from their Fx groups so applications
// can contribute them independently.
type ExecutorParams struct {
	fx.In
	Registry       repository.JobRegistry
	Processor      *batchpkg.Processor
	Operations     []port.ItemOperation        `group:"item_operations"`
	JobListeners   []port.JobExecutionListener `group:"job_listeners"`
	BatchListeners []port.BatchListener        `group:"batch_listeners"`
	Recorder       coremetrics.MetricRecorder
	Tracer         coremetrics.Tracer
}

// NewExecutorProvider builds the Executor from its Fx dependencies.
func NewExecutorProvider(p ExecutorParams) *Executor {
	return NewExecutor(p.Registry, p.Processor, p.Operations, p.JobListeners, p.BatchListeners, p.Recorder, p.Tracer)
}

// Module provides the job executor and its batch processor to Fx.
var Module = fx.Options(
	fx.Provide(batchpkg.NewProcessor),
	fx.Provide(NewExecutorProvider),
)
