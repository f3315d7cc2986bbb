// Package ingest handles PDF intake: size and structure checks, content
// hashing, and extraction of positioned text tokens per page.
package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/invoxhq/invox/internal/cache"
	"github.com/invoxhq/invox/internal/types"
)

// DefaultMaxSizeMB bounds uploads when no limit is configured.
const DefaultMaxSizeMB = 10

var (
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("pdf exceeds size limit")

	// ErrNotPDF is returned when the payload is not a parseable PDF.
	ErrNotPDF = errors.New("file is not a valid PDF")
)

// Document is a parsed PDF ready for grid building.
type Document struct {
	// Pages holds positioned tokens per page, in page order.
	Pages [][]types.PositionedToken

	PageCount   int
	ContentHash string // sha256 of the raw bytes
	Size        int64
}

// FromBytes validates and parses an uploaded PDF.
func FromBytes(data []byte, maxSizeMB int) (*Document, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if len(data) > maxSizeMB*1024*1024 {
		return nil, fmt.Errorf("%w: %d bytes (limit %d MB)", ErrTooLarge, len(data), maxSizeMB)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrNotPDF)
	}

	// pdfcpu walks the xref table, so a passing page count doubles as a
	// structural validity check.
	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrNotPDF)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	doc := &Document{
		Pages:       make([][]types.PositionedToken, 0, pageCount),
		PageCount:   pageCount,
		ContentHash: cache.HashContent(data),
		Size:        int64(len(data)),
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, nil)
			continue
		}
		doc.Pages = append(doc.Pages, pageTokens(page))
	}

	return doc, nil
}

// pageTokens extracts assembled word tokens from a single page.
func pageTokens(page pdf.Page) []types.PositionedToken {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	chunks := make([]textChunk, 0, len(content.Text))
	for _, t := range content.Text {
		chunks = append(chunks, textChunk{
			S:        t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
		})
	}

	return assembleTokens(chunks, pageHeight(page))
}

// pageHeight reads the MediaBox extent so Y (distance from the page bottom)
// can be flipped into a top-down coordinate.
func pageHeight(page pdf.Page) float64 {
	mediaBox := page.V.Key("MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() < 4 {
		return defaultPageHeight
	}
	lower := mediaBox.Index(1).Float64()
	upper := mediaBox.Index(3).Float64()
	if upper <= lower {
		return defaultPageHeight
	}
	return upper - lower
}

// defaultPageHeight is A4 in PDF points, used when MediaBox is missing.
const defaultPageHeight = 842.0
