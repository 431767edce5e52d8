package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	infraMetrics "github.com/attestia/jobcore/pkg/jobs/infrastructure/metrics"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

// NewRouter assembles the gin engine with the API routes and the metrics
// endpoint. The recorder may be nil when metrics are disabled.
func NewRouter(cfg *config.ServerConfig, h *Handler, recorder *infraMetrics.PrometheusRecorder) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	jobs := router.Group("/api/jobs")
	{
		jobs.POST("/certificates", h.SubmitCertificateJob)
		jobs.POST("/sync", h.SubmitSyncJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
		jobs.POST("/:id/cancel", h.CancelJob)
		jobs.POST("/:id/retry", h.RetryJob)
		jobs.GET("/:id/export", h.ExportJobResults)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if recorder != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(recorder.GetRegistry(), promhttp.HandlerOpts{})))
	}

	return router
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	srv *http.Server
}

// NewServer creates the HTTP server for the assembled router.
func NewServer(cfg *config.ServerConfig, router *gin.Engine) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		logger.Infof("HTTP server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server stopped: %v", err)
		}
	}()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
