package routes

import (
	"net/http"
	"net/url"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server/middleware"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetDefinitionHandler looks up a definition for a term. Lookup failures are
// not errors; the definition is simply null.
func GetDefinitionHandler(c echo.Context) error {
	type definitionResponse struct {
		Message    string  `json:"message,omitempty"`
		Term       string  `json:"term,omitempty"`
		Definition *string `json:"definition"`
	}

	term := c.Param("term")
	if decoded, err := url.PathUnescape(term); err == nil {
		term = decoded
	}
	if term == "" {
		return c.JSON(http.StatusBadRequest, definitionResponse{
			Message: "Term cannot be empty",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	definition, err := app.Lookup.Definition(ctx, term)
	if err != nil {
		logger.Warn("Definition lookup failed", "term", term, "err", err)
	}

	response := definitionResponse{Term: term}
	if definition != "" {
		response.Definition = &definition
	}
	return c.JSON(http.StatusOK, response)
}
