package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orchardcare/orchard-advisor/internal/infra/config"
	"github.com/orchardcare/orchard-advisor/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, recorder *metrics.Recorder) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		api.GET("/weather/outlook", handler.WeatherOutlook)

		fields := api.Group("/fields/:fieldId", identityMiddleware())
		fields.GET("/advisory", handler.FieldAdvisory)
		fields.GET("/tests", handler.TestHistory)
		fields.POST("/tests", handler.SubmitTest)
		fields.GET("/tests/export", handler.ExportHistory)
		fields.POST("/reports", handler.UploadReport)

		fields.GET("/consultations", handler.ListConsultations)
		fields.POST("/consultations", handler.RequestConsultation)
		fields.POST("/consultations/:id/accept", handler.AcceptConsultation)
		fields.POST("/consultations/:id/complete", handler.CompleteConsultation)
		fields.POST("/consultations/:id/prescription", handler.IssuePrescription)
		fields.POST("/prescriptions/:rxId/apply", handler.ApplyPrescription)
		fields.POST("/prescriptions/:rxId/flag-correction", handler.FlagPrescription)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
