package eligibility

import "go.uber.org/fx"

// Module provides the eligibility evaluator to Fx.
var Module = fx.Options(
	fx.Provide(NewEvaluator),
)
