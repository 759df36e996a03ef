package routes

import (
	"errors"
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/kg"

	"github.com/labstack/echo/v4"
)

func GetEntityHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service
	name := c.Param("name")

	graph := svc.Graph()
	if graph == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
	}

	neighbors, err := graph.Neighbors(name)
	if err != nil {
		if errors.Is(err, kg.ErrNotBuilt) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "knowledge graph not built"})
		}
		var notFound *kg.EntityNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": notFound.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, neighbors)
}
