package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/storage"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/extract"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// IngestDocumentMsg is the payload published to the ingest queue when a
// document upload is processed asynchronously.
type IngestDocumentMsg struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	FileName   string `json:"file_name"`
	FileKey    string `json:"file_key"`
}

// ProcessIngestMessage fetches an uploaded document from S3, extracts its
// concepts and relationships, and merges them into the shared knowledge
// graph. Any returned error causes the message to be retried.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	layoutProvider layout.Provider,
	extractor *extract.Extractor,
	graphStore store.GraphStore,
	data string,
) error {
	var msg IngestDocumentMsg
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal ingest message: %w", err)
	}
	if msg.DocumentID == "" || msg.FileKey == "" {
		return fmt.Errorf("ingest message is missing document_id or file_key")
	}

	logger.Info("[Ingest] Processing document", "document_id", msg.DocumentID, "file_key", msg.FileKey)

	content, err := storage.GetFile(ctx, s3Client, msg.FileKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document from storage: %w", err)
	}

	doc, err := layoutProvider.Load(ctx, content, msg.FileName)
	if err != nil {
		return fmt.Errorf("failed to parse document layout: %w", err)
	}

	title := msg.Title
	if title == "" {
		title = doc.Title
	}

	result, err := extractor.Extract(ctx, doc.FullText())
	if err != nil {
		return fmt.Errorf("failed to extract concepts: %w", err)
	}

	if err := graphStore.AddDocument(ctx, common.Document{ID: msg.DocumentID, Title: title}); err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}
	if err := graphStore.MergeConcepts(ctx, msg.DocumentID, result.Concepts); err != nil {
		return fmt.Errorf("failed to merge concepts: %w", err)
	}
	if err := graphStore.MergeRelationships(ctx, msg.DocumentID, result.Relationships); err != nil {
		return fmt.Errorf("failed to merge relationships: %w", err)
	}

	logger.Info(
		"[Ingest] Document merged into graph",
		"document_id", msg.DocumentID,
		"concepts", len(result.Concepts),
		"relationships", len(result.Relationships),
	)

	return nil
}
