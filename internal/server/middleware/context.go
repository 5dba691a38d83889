package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/extract"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/lookup"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"
)

// App bundles the shared services every request handler needs. Queue and S3
// are nil when async ingestion is not configured; handlers must check before
// using them.
type App struct {
	Store     store.GraphStore
	Extractor *extract.Extractor
	Layout    layout.Provider
	Lookup    lookup.DefinitionClient
	Queue     *amqp091.Channel
	S3        *s3.Client
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
