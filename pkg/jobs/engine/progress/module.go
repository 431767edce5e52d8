package progress

import "go.uber.org/fx"

// Module provides the progress tracker to Fx.
var Module = fx.Options(
	fx.Provide(NewTracker),
)
