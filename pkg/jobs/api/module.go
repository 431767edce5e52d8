package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	infraMetrics "github.com/attestia/jobcore/pkg/jobs/infrastructure/metrics"
)

// RouterParams defines the dependencies for the router provider. The
// Prometheus recorder is optional so the API can run without the metrics
// module.
type RouterParams struct {
	fx.In
	Cfg      *config.ServerConfig
	Handler  *Handler
	Recorder *infraMetrics.PrometheusRecorder `optional:"true"`
}

// Module provides the HTTP layer to Fx and ties the server to the
// application lifecycle.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Provide(func(p RouterParams) *gin.Engine {
		return NewRouter(p.Cfg, p.Handler, p.Recorder)
	}),
	fx.Provide(NewServer),
	fx.Invoke(func(lc fx.Lifecycle, server *Server) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				server.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)
