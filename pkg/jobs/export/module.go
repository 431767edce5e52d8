package export

import "go.uber.org/fx"

// Module provides the results exporter to Fx.
var Module = fx.Options(
	fx.Provide(NewResultsExporter),
)
