package routes

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/loader"

	"github.com/labstack/echo/v4"
)

func DownloadFileHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service
	filename := c.Param("filename")

	path, err := svc.Loader().FilePath(filename)
	if err != nil {
		if errors.Is(err, loader.ErrInvalidFileName) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
	}

	return c.Attachment(path, filepath.Base(path))
}
