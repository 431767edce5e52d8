package retry

import (
	"go.uber.org/fx"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
)

// CoordinatorParams defines the dependencies for NewCoordinatorProvider.
type CoordinatorParams struct {
	fx.In
	Registry repository.JobRegistry
	Resolver port.ItemResolver `optional:"true"`
}

// NewCoordinatorProvider builds the retry Coordinator from its Fx
// dependencies. The item resolver is optional.
func NewCoordinatorProvider(p CoordinatorParams) *Coordinator {
	return NewCoordinator(p.Registry, p.Resolver)
}

// Module provides the retry coordinator to Fx.
var Module = fx.Options(
	fx.Provide(NewCoordinatorProvider),
)
