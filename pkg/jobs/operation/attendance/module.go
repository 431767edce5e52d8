package attendance

import (
	"go.uber.org/fx"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
)

// Module provides the attendance sync operation and its collaborator clients
// to Fx.
var Module = fx.Options(
	fx.Provide(func(cfg *config.CollaboratorsConfig) (*HTTPApplier, error) {
		return NewHTTPApplier(&cfg.Attendance)
	}),
	fx.Provide(func(a *HTTPApplier) Applier { return a }),
	fx.Provide(
		fx.Annotate(
			func(applier Applier) port.ItemOperation { return NewOperation(applier) },
			fx.ResultTags(`group:"item_operations"`),
		),
	),
	fx.Provide(
		fx.Annotate(
			func(cfg *config.CollaboratorsConfig) (port.ScanRecordSource, error) {
				src, err := NewHTTPScanRecordSource(&cfg.Attendance)
				return src, err
			},
		),
	),
)
