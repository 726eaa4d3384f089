package router

import (
	"github.com/gin-gonic/gin"

	"labparse/internal/config"
	"labparse/internal/handler"
	"labparse/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg config.ServerConfig,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	if cfg.MaxBodyBytes > 0 {
		v1.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	reports := v1.Group("/reports")
	reports.POST("/parse", reportH.Parse)
	reports.POST("/parse-batch", reportH.ParseBatch)

	v1.GET("/catalog", reportH.Catalog)

	return r
}
