package routes

import (
	"errors"
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/kg"

	"github.com/labstack/echo/v4"
)

func GetGraphStatisticsHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	graph := svc.Graph()
	if graph == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
	}

	stats, err := graph.Statistics()
	if err != nil {
		if errors.Is(err, kg.ErrNotBuilt) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
