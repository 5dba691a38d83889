package server

import (
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "MindFlow Reader Backend API is running."})
	})

	apiRoutes := e.Group("/api")

	// Extraction routes
	apiRoutes.POST("/extract-concepts", routes.ExtractConceptsHandler)
	apiRoutes.POST("/documents", routes.UploadDocumentHandler)

	// Graph routes
	apiRoutes.GET("/global-graph", routes.GetGlobalGraphHandler)

	// Definition routes
	apiRoutes.GET("/definition/:term", routes.GetDefinitionHandler)
}
