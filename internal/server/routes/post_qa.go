package routes

import (
	"errors"
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/internal/service"
	"github.com/zhiwen/backend/pkg/rag"

	"github.com/labstack/echo/v4"
)

func AskHandler(c echo.Context) error {
	type body struct {
		Query             string `json:"query" validate:"required"`
		TopK              int    `json:"top_k" validate:"omitempty,min=1,max=50"`
		UseCache          *bool  `json:"use_cache"`
		CustomInstruction string `json:"custom_instruction"`
		EnableFollowup    bool   `json:"enable_followup"`
		ShowScoreDetails  bool   `json:"show_score_details"`
	}

	var b body
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&b); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	svc := c.(*middleware.AppContext).App.Service
	ctx := c.Request().Context()

	qa, err := svc.QA(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoDocuments) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	skipCache := b.UseCache != nil && !*b.UseCache
	result, err := qa.Ask(ctx, b.Query, rag.AskOptions{
		TopK:              b.TopK,
		CustomInstruction: b.CustomInstruction,
		EnableFollowup:    b.EnableFollowup,
		ShowScoreDetails:  b.ShowScoreDetails,
		SkipCache:         skipCache,
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
