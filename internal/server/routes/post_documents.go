package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/queue"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server/middleware"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/storage"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/difficulty"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// UploadDocumentHandler accepts a PDF upload, extracts its concepts and
// relationships, merges them into the shared knowledge graph, and scores
// per-block difficulty. With form field async=true and a configured broker,
// the upload is stored and queued for the worker instead.
func UploadDocumentHandler(c echo.Context) error {
	type documentConcept struct {
		Term       string  `json:"term"`
		Definition *string `json:"definition"`
	}

	type uploadResponse struct {
		Message           string                     `json:"message,omitempty"`
		ID                string                     `json:"id,omitempty"`
		Title             string                     `json:"title,omitempty"`
		Concepts          []documentConcept          `json:"concepts,omitempty"`
		Relationships     []common.Relationship      `json:"relationships,omitempty"`
		DifficultyMarkers []common.DifficultySegment `json:"difficulty_markers,omitempty"`
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Missing file upload",
		})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid file type. Please upload a PDF file.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", "filename", fileHeader.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	docID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate document id", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if c.FormValue("async") == "true" {
		if app.Queue == nil || app.S3 == nil {
			return c.JSON(http.StatusBadRequest, uploadResponse{
				Message: "Async ingestion is not configured",
			})
		}

		fileKey, err := storage.PutFile(ctx, app.S3, "documents", fileHeader.Filename, docID, bytes.NewReader(content))
		if err != nil {
			logger.Error("Failed to store uploaded file", "document_id", docID, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		msg, err := json.Marshal(queue.IngestDocumentMsg{
			DocumentID: docID,
			Title:      c.FormValue("title"),
			FileName:   fileHeader.Filename,
			FileKey:    fileKey,
		})
		if err != nil {
			logger.Error("Failed to marshal ingest message", "document_id", docID, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msg); err != nil {
			logger.Error("Failed to publish ingest message", "document_id", docID, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		logger.Info("Queued document for ingestion", "document_id", docID, "file_key", fileKey)
		return c.JSON(http.StatusAccepted, uploadResponse{
			Message: "Document queued for processing",
			ID:      docID,
		})
	}

	doc, err := app.Layout.Load(ctx, content, fileHeader.Filename)
	if err != nil {
		logger.Error("Failed to parse PDF", "filename", fileHeader.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error during file processing.",
		})
	}

	fullText := doc.FullText()
	if strings.TrimSpace(fullText) == "" {
		logger.Warn("No extractable text in PDF", "filename", fileHeader.Filename)
		return c.JSON(http.StatusUnprocessableEntity, uploadResponse{
			Message: "No text content could be extracted from the PDF.",
		})
	}

	result, err := app.Extractor.Extract(ctx, fullText)
	if err != nil {
		logger.Error("Concept extraction failed", "document_id", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error during file processing.",
		})
	}

	if err := app.Store.AddDocument(ctx, common.Document{ID: docID, Title: doc.Title}); err != nil {
		logger.Error("Failed to register document", "document_id", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}
	if err := app.Store.MergeConcepts(ctx, docID, result.Concepts); err != nil {
		logger.Error("Failed to merge concepts", "document_id", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}
	if err := app.Store.MergeRelationships(ctx, docID, result.Relationships); err != nil {
		logger.Error("Failed to merge relationships", "document_id", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	markers := analyzeDocumentDifficulty(doc, result.ConceptSet)

	concepts := make([]documentConcept, 0, len(result.Concepts))
	for _, concept := range result.Concepts {
		concepts = append(concepts, documentConcept{Term: concept.Term})
	}

	logger.Info(
		"Processed document",
		"document_id", docID,
		"title", doc.Title,
		"pages", doc.PageCount,
		"concepts", len(concepts),
		"relationships", len(result.Relationships),
		"difficulty_markers", len(markers),
	)

	return c.JSON(http.StatusOK, uploadResponse{
		ID:                docID,
		Title:             doc.Title,
		Concepts:          concepts,
		Relationships:     result.Relationships,
		DifficultyMarkers: markers,
	})
}

// analyzeDocumentDifficulty scores every text block of the document, keeping
// only segments with a non-zero score. Analysis is skipped entirely when no
// concepts were extracted.
func analyzeDocumentDifficulty(doc *layout.Document, concepts map[string]struct{}) []common.DifficultySegment {
	markers := []common.DifficultySegment{}
	if len(concepts) == 0 {
		logger.Warn("Skipping difficulty analysis, no concepts extracted")
		return markers
	}

	// Pages are scored in parallel; each page writes its own slot so the
	// flattened result keeps page and block order without a sort.
	pageMarkers := make([][]common.DifficultySegment, len(doc.Pages))
	var group errgroup.Group
	for i, page := range doc.Pages {
		group.Go(func() error {
			for _, block := range page.Blocks {
				if block.Type != layout.BlockTypeText {
					continue
				}
				if strings.TrimSpace(block.Text) == "" {
					continue
				}

				marker := difficulty.AnalyzeSegment(difficulty.SegmentParams{
					SegmentID:         segmentID(page.Index, block.Index),
					PageIndex:         page.Index,
					BlockIndex:        block.Index,
					Text:              block.Text,
					Concepts:          concepts,
					FigureCountOnPage: page.FigureCount,
					TableCountOnPage:  page.TableCount,
				})
				if marker.Score > 0 {
					pageMarkers[i] = append(pageMarkers[i], marker)
				}
			}
			return nil
		})
	}
	group.Wait()

	for _, page := range pageMarkers {
		markers = append(markers, page...)
	}
	return markers
}

func segmentID(pageIndex, blockIndex int) string {
	return fmt.Sprintf("p%d_b%d", pageIndex, blockIndex)
}
