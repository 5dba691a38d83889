package routes

import (
	"net/http"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server/middleware"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ExtractConceptsHandler extracts concepts from raw text
func ExtractConceptsHandler(c echo.Context) error {
	type extractBody struct {
		Text     string `json:"text" validate:"required"`
		Language string `json:"language,omitempty"`
	}

	type extractResponse struct {
		Message  string           `json:"message,omitempty"`
		Concepts []common.Concept `json:"concepts"`
	}

	data := new(extractBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Text cannot be empty",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	result, err := app.Extractor.Extract(ctx, data.Text)
	if err != nil {
		logger.Error("Concept extraction failed", "err", err)
		return c.JSON(http.StatusInternalServerError, extractResponse{
			Message: "Internal server error",
		})
	}

	logger.Info("Extracted concepts from text", "count", len(result.Concepts))
	return c.JSON(http.StatusOK, extractResponse{
		Concepts: result.Concepts,
	})
}
