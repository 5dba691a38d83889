package layout

import (
	"context"
	"strings"
)

// BlockType discriminates text blocks, the unit of difficulty scoring, from
// non-text layout regions.
type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeNonText BlockType = "non-text"
)

// Block is one layout-detected unit on a page, with its bounding geometry
// and textual content.
type Block struct {
	Index int       `json:"index"`
	Type  BlockType `json:"type"`
	Text  string    `json:"text"`

	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Page carries one page's raw text, its ordered blocks, and the page-level
// figure and table counters consumed by the difficulty scorer.
type Page struct {
	Index       int     `json:"index"`
	Text        string  `json:"text"`
	Blocks      []Block `json:"blocks"`
	FigureCount int     `json:"figure_count"`
	TableCount  int     `json:"table_count"`
}

// Document is the layout collaborator's view of one uploaded document.
type Document struct {
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
	Pages     []Page `json:"pages"`
}

// FullText joins the page texts in page order.
func (d *Document) FullText() string {
	texts := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		texts = append(texts, page.Text)
	}
	return strings.Join(texts, "\n")
}

// Provider extracts layout information from raw document content. The
// filename is used for title fallback when the document carries no usable
// metadata.
type Provider interface {
	Load(ctx context.Context, content []byte, filename string) (*Document, error)
}
