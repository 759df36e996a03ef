package routes

import (
	"errors"
	"net/http"
	"os"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/loader"

	"github.com/labstack/echo/v4"
)

func DeleteFileHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service
	filename := c.Param("filename")

	if err := svc.Loader().DeleteFile(filename); err != nil {
		if errors.Is(err, loader.ErrInvalidFileName) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	documents, err := svc.ReloadDocuments(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "file deleted",
		"filename":  filename,
		"documents": documents,
	})
}
