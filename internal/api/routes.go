package api

import (
	"github.com/mvallespi/dupscan/internal/batch"
	"github.com/mvallespi/dupscan/internal/config"
	"github.com/mvallespi/dupscan/internal/repository"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	cfg *config.Config,
	runner *batch.Runner,
	tracker *batch.StatusTracker,
	archive *repository.Archive,
) *gin.Engine {
	router := gin.Default()

	handler := NewHandler(cfg, runner, tracker, archive)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/analyze", handler.Analyze)
		api.GET("/status/:runId", handler.Status)
		api.GET("/report", handler.Report)
	}

	return router
}
