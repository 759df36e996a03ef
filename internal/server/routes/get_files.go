package routes

import (
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetFilesHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	files, err := svc.Loader().ListFiles()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, files)
}
