package routes

import (
	"context"
	"time"

	"github.com/cn-address-parser/app/controllers"
	"github.com/cn-address-parser/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Controllers các controller được mount vào router
type Controllers struct {
	Address  *controllers.AddressController
	Division *controllers.DivisionController
	Admin    *controllers.AdminController
}

// SetupAPIRoutes thiết lập tất cả API routes. syncTimeout chỉ áp cho các
// route parse đồng bộ; stream kết quả job và export không bị giới hạn.
// syncTimeout <= 0 thì không đặt deadline.
func SetupAPIRoutes(router *gin.Engine, ctl Controllers, syncTimeout time.Duration) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			syncRoutes := addresses.Group("")
			if syncTimeout > 0 {
				syncRoutes.Use(RequestTimeout(syncTimeout))
			}
			syncRoutes.POST("/parse", ctl.Address.ParseAddress)
			syncRoutes.POST("/batch", ctl.Address.ParseBatch)
			syncRoutes.POST("/normalize", ctl.Address.Normalize)
			syncRoutes.POST("/validate", ctl.Address.Validate)

			addresses.POST("/jobs", ctl.Address.CreateBatchJob)
			addresses.GET("/jobs/:jobID/status", ctl.Address.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", ctl.Address.GetJobResults)
		}

		divisions := v1.Group("/divisions")
		{
			divisions.GET("/provinces", ctl.Division.Provinces)
			divisions.GET("/provinces/:name/cities", ctl.Division.CitiesOfProvince)
			divisions.GET("/cities/:name/districts", ctl.Division.DistrictsOfCity)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/cache/clear", ctl.Admin.ClearCache)
			admin.POST("/cache/invalidate", ctl.Admin.InvalidateCache)
			admin.GET("/stats", ctl.Admin.GetStats)
			admin.POST("/export/mongo", ctl.Admin.ExportMongo)
			admin.POST("/export/meili", ctl.Admin.ExportMeili)
		}

		v1.GET("/health", ctl.Address.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupMetricsRoutes thiết lập metrics routes (cho Prometheus)
func SetupMetricsRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, ctl Controllers, syncTimeout time.Duration) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctl.Address)
	SetupAPIRoutes(router, ctl, syncTimeout)
	SetupMetricsRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}

// RequestTimeout gắn deadline vào context của request; ParseBatch dừng khi
// context hết hạn
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
