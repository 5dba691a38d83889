package routes

import (
	"net/http"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server/middleware"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetGlobalGraphHandler returns the shared knowledge graph, optionally
// filtered to a set of documents via repeated document_ids query parameters.
func GetGlobalGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	documentIDs := c.QueryParams()["document_ids"]

	view, err := app.Store.QueryView(ctx, documentIDs)
	if err != nil {
		logger.Error("Failed to query graph view", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	logger.Info(
		"Returning global graph",
		"nodes", len(view.Nodes),
		"links", len(view.Links),
		"documents", len(view.Documents),
	)
	return c.JSON(http.StatusOK, view)
}
