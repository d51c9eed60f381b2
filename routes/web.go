package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Chinese Address Parser Service",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Chinese Address Parser API v1",
				"endpoints": map[string]string{
					"parse":       "POST /v1/addresses/parse",
					"batch":       "POST /v1/addresses/batch",
					"jobs":        "POST /v1/addresses/jobs",
					"job_status":  "GET /v1/addresses/jobs/:jobID/status",
					"job_results": "GET /v1/addresses/jobs/:jobID/results?format=ndjson&gzip=1",
					"normalize":   "POST /v1/addresses/normalize",
					"validate":    "POST /v1/addresses/validate",
					"provinces":   "GET /v1/divisions/provinces",
					"cities":      "GET /v1/divisions/provinces/:name/cities",
					"districts":   "GET /v1/divisions/cities/:name/districts",
					"health":      "GET /health",
					"metrics":     "GET /metrics",
				},
			})
		})
	}
}
