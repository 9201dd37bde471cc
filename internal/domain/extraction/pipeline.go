package extraction

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extraction/ocr"
)

var tracer = otel.Tracer("bank-statement-converter/extraction")

// DefaultMinDirectTextLength is the policy threshold below which a direct
// extraction result is treated as "this PDF is scanned, not text-native".
const DefaultMinDirectTextLength = 100

// DefaultScale is the rasterization scale for OCR. 2.0 (144 DPI) is enough
// for recognition without ballooning page bitmaps.
const DefaultScale = 2.0

// Phase labels a pipeline stage for progress observability.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseExtracting  Phase = "extracting"
	PhaseScanning    Phase = "scanning"
	PhaseStructuring Phase = "structuring"
	PhaseFormatting  Phase = "formatting"
)

// ProgressFunc receives a human-readable label at each phase transition.
type ProgressFunc func(phase Phase, message string)

// Pager is the per-document surface the controller drives. *Document
// implements it over go-fitz; tests substitute fakes.
type Pager interface {
	PageCount() int
	ExtractText(ctx context.Context) (string, error)
	RasterizePages(ctx context.Context, scale float64, fn func(img image.Image, pageIndex, totalPages int) error) error
}

// OpenFunc opens a scoped document over buf and guarantees release after fn.
type OpenFunc func(buf []byte, logger *slog.Logger, fn func(Pager) error) error

func openFitz(buf []byte, logger *slog.Logger, fn func(Pager) error) error {
	return WithDocument(buf, logger, func(d *Document) error { return fn(d) })
}

// Options tunes a Controller.
type Options struct {
	// MinDirectTextLength is the OCR fallback threshold; zero means default.
	MinDirectTextLength int
	// Scale is the rasterization scale for the OCR path; zero means default.
	Scale float64
	// Recognizer overrides the process-wide default OCR engine.
	Recognizer ocr.Recognizer
	// Progress, when set, receives phase labels.
	Progress ProgressFunc
}

// Controller runs the raw-text stage of the pipeline: direct extraction with
// an OCR fallback, cooperative cancellation at every stage boundary and
// before every page.
type Controller struct {
	open       OpenFunc
	recognizer ocr.Recognizer
	minDirect  int
	scale      float64
	progress   ProgressFunc
	logger     *slog.Logger
}

// NewController builds a controller with go-fitz document handling.
func NewController(opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		open:       openFitz,
		recognizer: opts.Recognizer,
		minDirect:  opts.MinDirectTextLength,
		scale:      opts.Scale,
		progress:   opts.Progress,
		logger:     logger,
	}
	if c.minDirect <= 0 {
		c.minDirect = DefaultMinDirectTextLength
	}
	if c.scale <= 0 {
		c.scale = DefaultScale
	}
	if c.recognizer == nil {
		c.recognizer = ocr.Default()
	}
	return c
}

// Process extracts the raw text of a statement PDF. Direct embedded-text
// extraction runs first; when it yields fewer than the configured minimum of
// characters the controller falls back to per-page OCR and concatenates the
// recognized pages in page order. Cancellation surfaces as ErrCancelled,
// distinct from all other failures.
func (c *Controller) Process(ctx context.Context, buf []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "extraction.process")
	defer span.End()

	start := time.Now()
	logger := c.logger.With("invocation", uuid.New().String())
	c.report(PhaseLoading, "Loading document")

	var raw string
	err := c.open(buf, logger, func(doc Pager) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		c.report(PhaseExtracting, "Extracting text")
		text, err := doc.ExtractText(ctx)
		if err != nil {
			return err
		}
		if len(strings.TrimSpace(text)) >= c.minDirect {
			raw = text
			return nil
		}

		logger.Info("direct extraction yielded too little text, falling back to OCR",
			"chars", len(strings.TrimSpace(text)), "threshold", c.minDirect, "pages", doc.PageCount())

		var b strings.Builder
		orch := ocr.NewOrchestrator(c.recognizer, c.scale, logger)
		orch.OnPageStart(func(pageIndex, totalPages int) {
			c.report(PhaseScanning, fmt.Sprintf("Scanning page %d/%d", pageIndex+1, totalPages))
		})
		err = orch.RecognizeAllPages(ctx, doc, func(text string, pageIndex, totalPages int) {
			if b.Len() > 0 {
				b.WriteString(pageSeparator)
			}
			b.WriteString(text)
		})
		if err != nil {
			return err
		}
		raw = b.String()
		return nil
	})
	if err != nil {
		if IsCancelled(err) {
			return "", AsCancelled(err)
		}
		documentFailures.Inc()
		return "", err
	}

	documentsProcessed.Inc()
	processDuration.Observe(time.Since(start).Seconds())
	logger.Info("raw text extracted", "chars", len(raw), "elapsed", time.Since(start))
	return raw, nil
}

func (c *Controller) report(phase Phase, message string) {
	if c.progress != nil {
		c.progress(phase, message)
	}
}
