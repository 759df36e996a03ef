package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/kg"

	"github.com/labstack/echo/v4"
)

func GetGraphProjectionHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	percent := defaultProjectionPercent
	if raw := c.QueryParam("percent"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "percent must be an integer between 1 and 100"})
		}
		percent = parsed
	}

	graph := svc.Graph()
	if graph == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
	}

	projection, err := graph.Project(percent)
	if err != nil {
		if errors.Is(err, kg.ErrNotBuilt) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, projection)
}
