package certificate

import (
	"go.uber.org/fx"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
)

// Module provides the certificate generation operation and its collaborator
// clients to Fx.
var Module = fx.Options(
	fx.Provide(func(cfg *config.CollaboratorsConfig) (*HTTPIssuer, error) {
		return NewHTTPIssuer(&cfg.Certificate)
	}),
	fx.Provide(func(i *HTTPIssuer) Issuer { return i }),
	fx.Provide(
		fx.Annotate(
			func(issuer Issuer) port.ItemOperation { return NewOperation(issuer) },
			fx.ResultTags(`group:"item_operations"`),
		),
	),
	fx.Provide(
		fx.Annotate(
			func(cfg *config.CollaboratorsConfig) (port.ParticipantSource, error) {
				src, err := NewHTTPParticipantSource(&cfg.Attendance)
				return src, err
			},
		),
	),
)
