// Package ocr recognizes text on rendered statement pages when a PDF carries
// no usable embedded text. Recognition engines are pluggable: a local
// Tesseract engine and a vision-LLM engine are provided.
package ocr

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
)

// Recognizer turns one rendered page into text. Engines may be remote; a
// failure on one page is recoverable and must not poison the others.
type Recognizer interface {
	RecognizePage(ctx context.Context, img image.Image, pageIndex int) (string, error)
}

// PageSource produces rendered pages one at a time, in physical page order,
// invoking the callback for each. *extraction.Document satisfies this.
type PageSource interface {
	RasterizePages(ctx context.Context, scale float64, fn func(img image.Image, pageIndex, totalPages int) error) error
}

// PageTextFunc receives the recognized text of one page.
type PageTextFunc func(text string, pageIndex, totalPages int)

// PageStartFunc is invoked before a page's recognition begins, including for
// pages whose recognition then fails.
type PageStartFunc func(pageIndex, totalPages int)

// Orchestrator drives a PageSource through a Recognizer sequentially, at most
// one page bitmap resident at a time.
type Orchestrator struct {
	rec       Recognizer
	scale     float64
	pageStart PageStartFunc
	logger    *slog.Logger
}

// NewOrchestrator builds an orchestrator rendering at the given scale
// (quality/memory trade-off; lower is enough for recognition, not viewing).
func NewOrchestrator(rec Recognizer, scale float64, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{rec: rec, scale: scale, logger: logger}
}

// OnPageStart registers a hook invoked before each page is recognized, so
// progress reflects the page being worked on rather than the one finished.
func (o *Orchestrator) OnPageStart(fn PageStartFunc) {
	o.pageStart = fn
}

// RecognizeAllPages recognizes every page of src in order and invokes onPage
// per page. A per-page recognition failure is logged, the page skipped, and
// processing continues; only cancellation or a render failure aborts the run.
// The page bitmap is released (not retained) before the next page is rendered.
func (o *Orchestrator) RecognizeAllPages(ctx context.Context, src PageSource, onPage PageTextFunc) error {
	return src.RasterizePages(ctx, o.scale, func(img image.Image, pageIndex, totalPages int) error {
		if o.pageStart != nil {
			o.pageStart(pageIndex, totalPages)
		}
		text, err := o.rec.RecognizePage(ctx, img, pageIndex)
		if err != nil {
			if cancelled(ctx, err) {
				return err
			}
			pageFailures.Inc()
			o.logger.Warn("page recognition failed, skipping page",
				"page", pageIndex+1, "pages", totalPages, "error", err)
			return nil
		}
		pagesRecognized.Inc()
		onPage(text, pageIndex, totalPages)
		return nil
	})
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

var (
	defaultMu  sync.Mutex
	defaultRec Recognizer
)

// Default returns the process-wide recognizer, initializing the Tesseract
// engine exactly once. Repeated calls never re-initialize.
func Default() Recognizer {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRec == nil {
		defaultRec = NewTesseractRecognizer(TesseractConfig{})
	}
	return defaultRec
}

// SetDefault replaces the process-wide recognizer. Intended for host wiring
// at startup, before any pipeline invocation runs.
func SetDefault(rec Recognizer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRec = rec
}
