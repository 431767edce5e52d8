package metrics

import (
	"go.uber.org/fx"

	coremetrics "github.com/attestia/jobcore/pkg/jobs/core/metrics"
)

// Module provides the Prometheus recorder and OpenTelemetry tracer to Fx.
// The concrete PrometheusRecorder is also provided directly so the HTTP
// layer can mount its registry.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(func(r *PrometheusRecorder) coremetrics.MetricRecorder { return r }),
	fx.Provide(
		fx.Annotate(
			NewOpenTelemetryTracer,
			fx.As(new(coremetrics.Tracer)),
		),
	),
)
