package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/queue"
	mid "github.com/Shen-Yuuu/MindFlow-Reader/internal/server/middleware"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/storage"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/util"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate/hanlp"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/corpus"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/extract"
	layoutpdf "github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout/pdf"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/lookup/ownthink"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store/memory"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store/pg"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	annotator, err := hanlp.NewHanLPAnnotator(hanlp.NewHanLPAnnotatorParams{
		BaseURL:               util.GetEnv("HANLP_URL"),
		ApiKey:                util.GetEnv("HANLP_API_KEY"),
		Language:              util.GetEnvString("HANLP_LANGUAGE", "zh"),
		MaxConcurrentRequests: int64(util.GetEnvInt("HANLP_PARALLEL_REQ", 2)),
	})
	if err != nil {
		logger.Fatal("Failed to create HanLP client", "err", err)
	}

	var titles *corpus.Corpus
	if path := util.GetEnv("WIKI_TITLES_PATH"); path != "" {
		titles, err = corpus.Load(path)
		if err != nil {
			logger.Fatal("Failed to load title corpus", "path", path, "err", err)
		}
		logger.Info("Loaded title corpus", "path", path, "titles", titles.Len())
	} else {
		logger.Warn("WIKI_TITLES_PATH not set, corpus filtering is disabled")
	}

	extractor := extract.NewExtractor(extract.NewExtractorParams{
		Annotator:      annotator,
		Corpus:         titles,
		ParallelChunks: util.GetEnvInt("EXTRACT_PARALLEL_CHUNKS", 2),
		MaxRetries:     util.GetEnvInt("EXTRACT_MAX_RETRIES", 3),
	})

	var graphStore store.GraphStore
	if dbURL := util.GetEnv("DATABASE_URL"); dbURL != "" {
		migrations := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")
		if err := pg.Migrate(migrations, dbURL); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}

		conn, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		graphStore = pg.NewGraphDBStorageWithConnection(conn)
		logger.Info("Using postgres graph store")
	} else {
		graphStore = memory.NewGraphMemoryStorage()
		logger.Info("Using in-memory graph store")
	}

	app := &mid.App{
		Store:     graphStore,
		Extractor: extractor,
		Layout:    layoutpdf.NewPDFLayoutProvider(),
		Lookup: ownthink.NewOwnThinkClient(ownthink.NewOwnThinkClientParams{
			BaseURL: util.GetEnv("OWNTHINK_URL"),
		}),
	}

	// async ingestion needs both a broker and object storage
	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch
		app.S3 = storage.NewS3Client(ctx)
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("256M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
