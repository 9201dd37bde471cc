// Package extraction pulls raw text out of PDF bank statements. Direct
// embedded-text extraction runs first; scanned documents fall back to
// page-by-page OCR driven by the pipeline controller.
package extraction

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// pageSeparator joins per-page text blobs in the direct-extraction result.
const pageSeparator = "\n\n"

// Document wraps an open PDF parse context. Its lifetime never exceeds one
// pipeline invocation; open through WithDocument so release is guaranteed.
type Document struct {
	fz    *fitz.Document
	pages int
}

// WithDocument opens a parse context over buf, runs fn, and releases the
// context and its native buffers on every exit path. A release failure is
// logged, never returned over a real failure from fn.
func WithDocument(buf []byte, logger *slog.Logger, fn func(*Document) error) error {
	fz, err := fitz.NewFromMemory(buf)
	if err != nil {
		return &ExtractionError{Page: -1, Err: fmt.Errorf("open document: %w", err)}
	}
	doc := &Document{fz: fz, pages: fz.NumPage()}
	defer func() {
		if cerr := fz.Close(); cerr != nil && logger != nil {
			logger.Warn("failed to release document handle", "error", cerr)
		}
	}()
	return fn(doc)
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pages }

// ExtractText concatenates the embedded text of every page in physical page
// order. The context is checked before each page; no structure is inferred.
func (d *Document) ExtractText(ctx context.Context) (string, error) {
	var b strings.Builder
	for i := 0; i < d.pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		text, err := d.fz.Text(i)
		if err != nil {
			return "", &ExtractionError{Page: i, Err: err}
		}
		if i > 0 {
			b.WriteString(pageSeparator)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// RasterizePages renders one page at a time at the given scale (1.0 = 72 DPI)
// and hands the bitmap to fn. fn must fully consume the image before
// returning; the next page is not rendered until it does, so peak memory is
// bounded to a single rendered page. A render failure aborts the whole pass.
func (d *Document) RasterizePages(ctx context.Context, scale float64, fn func(img image.Image, pageIndex, totalPages int) error) error {
	if scale <= 0 {
		scale = 1.0
	}
	for i := 0; i < d.pages; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		img, err := d.fz.ImageDPI(i, 72*scale)
		if err != nil {
			return &ExtractionError{Page: i, Err: fmt.Errorf("render: %w", err)}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if err := fn(img, i, d.pages); err != nil {
			return err
		}
	}
	return nil
}
