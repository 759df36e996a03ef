package routes

import (
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetCacheStatsHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	return c.JSON(http.StatusOK, map[string]any{
		"cached_queries": svc.Cache().Size(),
		"cache_path":     svc.Config().CachePath,
	})
}
