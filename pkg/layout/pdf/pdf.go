package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/layout"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"github.com/ledongthuc/pdf"
)

// Row grouping tolerances, in PDF points.
const (
	lineYTolerance    = 2.0
	defaultBlockGap   = 12.0
	columnGapMinWidth = 10.0
)

// PDFLayoutProvider implements layout.Provider for PDF documents. Blocks
// are rebuilt from positioned text rows, figures are counted from page
// image resources, and tables are detected from column-aligned row runs.
type PDFLayoutProvider struct{}

// NewPDFLayoutProvider creates a PDF layout provider.
func NewPDFLayoutProvider() *PDFLayoutProvider {
	return &PDFLayoutProvider{}
}

// Load parses the PDF and returns its per-page layout. Pages that fail to
// parse are returned empty rather than failing the document.
func (p *PDFLayoutProvider) Load(ctx context.Context, content []byte, filename string) (*layout.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	doc := &layout.Document{
		Title:     documentTitle(reader, filename),
		PageCount: reader.NumPage(),
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageIdx := pageNum - 1
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, layout.Page{Index: pageIdx})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("[Layout] Failed to read page text", "page", pageIdx, "err", err)
			text = ""
		}

		rows := pageRows(page)
		blocks := groupBlocks(rows)

		doc.Pages = append(doc.Pages, layout.Page{
			Index:       pageIdx,
			Text:        text,
			Blocks:      blocks,
			FigureCount: countImages(page),
			TableCount:  countTables(rows),
		})
	}

	return doc, nil
}

// documentTitle reads the PDF Info dictionary title, falling back to the
// filename without extension.
func documentTitle(reader *pdf.Reader, filename string) string {
	info := reader.Trailer().Key("Info")
	if title := info.Key("Title"); title.Kind() == pdf.String {
		if t := strings.TrimSpace(title.RawString()); t != "" {
			return t
		}
	}

	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type textRow struct {
	y     float64
	items []pdf.Text
}

// pageRows groups the page's positioned text items into rows by their
// baseline Y coordinate, top of page first.
func pageRows(page pdf.Page) []textRow {
	texts := page.Content().Text
	if len(texts) == 0 {
		return nil
	}

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			// PDF Y grows upward; higher Y is closer to the page top
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var rows []textRow
	for _, item := range texts {
		if len(rows) > 0 && rows[len(rows)-1].y-item.Y < lineYTolerance {
			rows[len(rows)-1].items = append(rows[len(rows)-1].items, item)
			continue
		}
		rows = append(rows, textRow{y: item.Y, items: []pdf.Text{item}})
	}

	return rows
}

func (r textRow) text() string {
	var b strings.Builder
	for _, item := range r.items {
		b.WriteString(item.S)
	}
	return b.String()
}

func (r textRow) fontSize() float64 {
	if len(r.items) == 0 {
		return 0
	}
	return r.items[0].FontSize
}

// groupBlocks merges consecutive rows into blocks, starting a new block
// whenever the vertical gap exceeds the running line spacing.
func groupBlocks(rows []textRow) []layout.Block {
	var blocks []layout.Block
	var current []textRow

	flush := func() {
		if len(current) == 0 {
			return
		}
		block := buildBlock(current, len(blocks))
		if strings.TrimSpace(block.Text) != "" {
			blocks = append(blocks, block)
		}
		current = nil
	}

	for i, row := range rows {
		if len(current) > 0 {
			gap := current[len(current)-1].y - row.y
			threshold := defaultBlockGap
			if fs := row.fontSize(); fs > 0 {
				threshold = fs * 1.6
			}
			if gap > threshold {
				flush()
			}
		}
		current = append(current, rows[i])
	}
	flush()

	return blocks
}

func buildBlock(rows []textRow, index int) layout.Block {
	var lines []string
	x0, y0 := rows[0].items[0].X, rows[len(rows)-1].y
	x1, y1 := x0, rows[0].y+rows[0].fontSize()

	for _, row := range rows {
		lines = append(lines, row.text())
		for _, item := range row.items {
			if item.X < x0 {
				x0 = item.X
			}
			if item.X+item.W > x1 {
				x1 = item.X + item.W
			}
		}
	}

	return layout.Block{
		Index: index,
		Type:  layout.BlockTypeText,
		Text:  strings.Join(lines, "\n"),
		X0:    x0,
		Y0:    y0,
		X1:    x1,
		Y1:    y1,
	}
}

// countImages counts image XObjects among the page resources.
func countImages(page pdf.Page) int {
	resources := page.V.Key("Resources")
	if resources.Kind() != pdf.Dict {
		return 0
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return 0
	}

	count := 0
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}

// countTables counts runs of two or more consecutive rows that look
// tabular: three or more text items separated by clear column gaps.
func countTables(rows []textRow) int {
	tables := 0
	run := 0

	for _, row := range rows {
		if isTabularRow(row) {
			run++
			continue
		}
		if run >= 2 {
			tables++
		}
		run = 0
	}
	if run >= 2 {
		tables++
	}

	return tables
}

func isTabularRow(row textRow) bool {
	if len(row.items) < 3 {
		return false
	}

	gaps := 0
	for i := 1; i < len(row.items); i++ {
		prev := row.items[i-1]
		if row.items[i].X-(prev.X+prev.W) > columnGapMinWidth {
			gaps++
		}
	}
	return gaps >= 2
}
