// Package repository wires the configured job registry backend into Fx.
package repository

import (
	"go.uber.org/fx"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	domainrepo "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	gormregistry "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm"
	inmemory "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/inmemory"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// NewJobRegistry builds the registry selected by configuration. SQL drivers
// must be linked in by importing their subpackage under
// infrastructure/repository/gorm.
func NewJobRegistry(cfg *config.RegistryConfig) (domainrepo.JobRegistry, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Debugf("Using in-memory job registry")
		return inmemory.NewRegistry(), nil
	default:
		return gormregistry.NewRegistry(cfg.Driver, cfg.DSN)
	}
}

// Module provides the configured JobRegistry to Fx and closes it on
// application shutdown.
var Module = fx.Options(
	fx.Provide(NewJobRegistry),
	fx.Invoke(func(lc fx.Lifecycle, registry domainrepo.JobRegistry) {
		lc.Append(fx.StopHook(func() error {
			return registry.Close()
		}))
	}),
)
