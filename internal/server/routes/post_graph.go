package routes

import (
	"errors"
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/internal/service"

	"github.com/labstack/echo/v4"
)

const defaultProjectionPercent = 10

func BuildGraphHandler(c echo.Context) error {
	type body struct {
		Percent int `json:"percent" validate:"omitempty,min=1,max=100"`
	}

	var b body
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&b); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if b.Percent == 0 {
		b.Percent = defaultProjectionPercent
	}

	svc := c.(*middleware.AppContext).App.Service

	projection, stats, err := svc.BuildGraph(c.Request().Context(), b.Percent)
	if err != nil {
		if errors.Is(err, service.ErrNoDocuments) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "knowledge graph built",
		"statistics": stats,
		"projection": projection,
	})
}
