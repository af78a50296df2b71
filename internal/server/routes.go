package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(handler *Handler, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		listings := v1.Group("/listings")
		{
			listings.POST("/analyze", handler.AnalyzeBatch)
			listings.POST("/export", handler.ExportBatch)
		}
		results := v1.Group("/results")
		{
			results.GET("", handler.ListResults)
			results.GET("/:id", handler.GetResult)
			results.GET("/:id/export.csv", handler.ExportResultCSV)
		}
	}

	return router
}
