package metrics

import (
	"go.uber.org/fx"
)

// Module is an Fx module providing no-op metrics components. Applications
// that want real metrics include the infrastructure metrics module instead,
// which provides Prometheus and OpenTelemetry backed implementations for the
// same interfaces.
var Module = fx.Options(
	fx.Provide(NewNoOpMetricRecorder),
	fx.Provide(NewNoOpTracer),
)
