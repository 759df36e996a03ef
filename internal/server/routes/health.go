package routes

import (
	"net/http"
	"time"

	"github.com/zhiwen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func HealthHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"documents":   svc.DocumentCount(),
		"graph_built": svc.Graph() != nil,
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
