package server

import (
	"github.com/zhiwen/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", routes.HealthHandler)

	apiRoutes := e.Group("/api")

	// Document file routes
	apiRoutes.GET("/files", routes.GetFilesHandler)
	apiRoutes.POST("/files/upload", routes.UploadFileHandler)
	apiRoutes.DELETE("/files/:filename", routes.DeleteFileHandler)
	apiRoutes.GET("/files/:filename/download", routes.DownloadFileHandler)

	// Knowledge graph routes
	apiRoutes.POST("/graph", routes.BuildGraphHandler)
	apiRoutes.GET("/graph/statistics", routes.GetGraphStatisticsHandler)
	apiRoutes.GET("/graph/projection", routes.GetGraphProjectionHandler)
	apiRoutes.GET("/graph/entities/:name", routes.GetEntityHandler)

	// Question answering routes
	apiRoutes.POST("/qa", routes.AskHandler)
	apiRoutes.GET("/qa/cache/stats", routes.GetCacheStatsHandler)
	apiRoutes.DELETE("/qa/cache", routes.ClearCacheHandler)

	// System routes
	apiRoutes.GET("/system/stats", routes.GetSystemStatsHandler)
}
