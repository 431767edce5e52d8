package usecase

import (
	"go.uber.org/fx"
)

// Module provides the application services to Fx, bound to their interfaces.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewSimpleJobSubmitter, fx.As(new(JobSubmitter))),
	),
	fx.Provide(
		fx.Annotate(NewSimpleJobExplorer, fx.As(new(JobExplorer))),
	),
	fx.Provide(
		fx.Annotate(NewDefaultJobOperator, fx.As(new(JobOperator))),
	),
)
