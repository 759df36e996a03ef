package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/pkg/loader"

	"github.com/labstack/echo/v4"
)

func UploadFileHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing file field"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := svc.Loader().SaveFile(fileHeader.Filename, content); err != nil {
		if errors.Is(err, loader.ErrInvalidFileName) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	documents, err := svc.ReloadDocuments(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "file uploaded",
		"filename":  fileHeader.Filename,
		"size":      fileHeader.Size,
		"documents": documents,
	})
}
