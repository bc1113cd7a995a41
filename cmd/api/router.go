package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pagesmith-backend/internal/infrastructure/metrics"
	"pagesmith-backend/internal/shared/middleware"
	"pagesmith-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPageRoutes(v1, c)
		setupPublishRoutes(v1, c)
	}

	return router
}

// ========================================
// PAGE ROUTES
// ========================================
func setupPageRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/updates/:id/generate", c.PageHandler.GenerateForUpdate)
	v1.POST("/businesses/:id/profile-page", c.PageHandler.GenerateProfilePage)
	v1.GET("/pages/:id/preview", c.PageHandler.Preview)
}

// ========================================
// PUBLISH ROUTES
// ========================================
func setupPublishRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/publish", c.PublishHandler.Publish)
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		services := appCtx.HealthCheck(ctx)
		status, code := "ok", http.StatusOK
		for _, s := range services {
			if s != "ok" {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
