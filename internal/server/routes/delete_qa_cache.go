package routes

import (
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func ClearCacheHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service
	svc.Cache().Clear()

	return c.JSON(http.StatusOK, map[string]string{
		"message": "query cache cleared",
	})
}
