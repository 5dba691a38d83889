package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/queue"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/storage"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/util"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate/hanlp"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/corpus"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/extract"
	layoutpdf "github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout/pdf"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger/console"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store/memory"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store/pg"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client := storage.NewS3Client(ctx)

	// HanLP annotator and extraction pipeline
	annotator, err := hanlp.NewHanLPAnnotator(hanlp.NewHanLPAnnotatorParams{
		BaseURL:               util.GetEnv("HANLP_URL"),
		ApiKey:                util.GetEnv("HANLP_API_KEY"),
		Language:              util.GetEnvString("HANLP_LANGUAGE", "zh"),
		MaxConcurrentRequests: int64(util.GetEnvInt("HANLP_PARALLEL_REQ", 2)),
	})
	if err != nil {
		logger.Fatal("Could not create HanLP client", "err", err)
	}

	var titles *corpus.Corpus
	if path := util.GetEnv("WIKI_TITLES_PATH"); path != "" {
		titles, err = corpus.Load(path)
		if err != nil {
			logger.Fatal("Failed to load title corpus", "path", path, "err", err)
		}
	} else {
		logger.Warn("WIKI_TITLES_PATH not set, corpus filtering is disabled")
	}

	extractor := extract.NewExtractor(extract.NewExtractorParams{
		Annotator:      annotator,
		Corpus:         titles,
		ParallelChunks: util.GetEnvInt("EXTRACT_PARALLEL_CHUNKS", 2),
		MaxRetries:     util.GetEnvInt("EXTRACT_MAX_RETRIES", 3),
	})

	layoutProvider := layoutpdf.NewPDFLayoutProvider()

	// Graph store, shared with the server through postgres when configured
	var graphStore store.GraphStore
	if dbURL := util.GetEnv("DATABASE_URL"); dbURL != "" {
		migrations := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")
		if err := pg.Migrate(migrations, dbURL); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}

		pgConn, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		defer pgConn.Close()
		graphStore = pg.NewGraphDBStorageWithConnection(pgConn)
	} else {
		logger.Warn("DATABASE_URL not set, worker results stay in worker memory")
		graphStore = memory.NewGraphMemoryStorage()
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queues := []string{queue.IngestQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Create a single consumer channel with prefetch=1
	// This ensures only ONE message is delivered at a time across all queues
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.IngestQueue:
					processingErr = queue.ProcessIngestMessage(ctx, client, layoutProvider, extractor, graphStore, string(qm.msg.Body))
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					handleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					err = qm.msg.Ack(false)
					if err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
