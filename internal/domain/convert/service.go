// Package convert runs the full statement conversion: raw text extraction,
// AI structuring, validation and cell-typed formatting. It owns all
// intermediate data for exactly one invocation; nothing is shared across
// concurrent conversions.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/export"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extraction"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/structuring"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/validation"
)

var tracer = otel.Tracer("bank-statement-converter/convert")

// TextExtractor produces the raw text of a statement PDF.
type TextExtractor interface {
	Process(ctx context.Context, buf []byte) (string, error)
}

// Structurer turns raw text into a typed statement document.
type Structurer interface {
	Structure(ctx context.Context, rawText string) (*statement.Document, error)
}

// Result is everything one conversion produced. Validation findings are data,
// never errors; the caller decides what to surface.
type Result struct {
	Document   *statement.Document
	Validation validation.Result
	Sheet      export.TypedSheet
}

// Service wires the pipeline stages together.
type Service struct {
	extractor  TextExtractor
	structurer Structurer
	valOpts    validation.Options
	progress   extraction.ProgressFunc
	logger     *slog.Logger
}

// NewService builds a conversion service. progress may be nil.
func NewService(extractor TextExtractor, structurer Structurer, valOpts validation.Options, progress extraction.ProgressFunc, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor:  extractor,
		structurer: structurer,
		valOpts:    valOpts,
		progress:   progress,
		logger:     logger,
	}
}

// Convert runs the whole pipeline over a PDF buffer. Cancellation at any
// stage boundary surfaces as extraction.ErrCancelled so hosts can render a
// neutral "cancelled" state instead of an error.
func (s *Service) Convert(ctx context.Context, buf []byte) (*Result, error) {
	ctx, span := tracer.Start(ctx, "convert.run")
	defer span.End()
	start := time.Now()

	raw, err := s.extractor.Process(ctx, buf)
	if err != nil {
		return nil, err
	}

	s.report(extraction.PhaseStructuring, "Structuring transactions")
	doc, err := s.structurer.Structure(ctx, raw)
	if err != nil {
		if extraction.IsCancelled(err) {
			return nil, extraction.AsCancelled(err)
		}
		conversionFailures.Inc()
		return nil, fmt.Errorf("structure statement: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, extraction.AsCancelled(err)
	}

	res := validation.Validate(doc.Transactions, doc.Footer, s.valOpts)
	if !res.IsValid {
		s.logger.Warn("structured statement has validation issues",
			"issues", len(res.Issues), "warnings", len(res.AccuracyWarnings))
	}

	s.report(extraction.PhaseFormatting, "Formatting spreadsheet")
	sheet := export.TypeCells(export.Format(doc))

	conversionsTotal.Inc()
	s.logger.Info("conversion complete",
		"transactions", len(doc.Transactions),
		"valid", res.IsValid,
		"elapsed", time.Since(start))
	return &Result{Document: doc, Validation: res, Sheet: sheet}, nil
}

func (s *Service) report(phase extraction.Phase, message string) {
	if s.progress != nil {
		s.progress(phase, message)
	}
}

// FailureKind is the presentation-level failure taxonomy.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureCancelled
	FailureNetwork
	FailureExtraction
	FailureStructuring
)

// ClassifyError maps any pipeline error onto the failure taxonomy.
// Cancellation is checked first so it never shares a path with real faults.
func ClassifyError(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	if extraction.IsCancelled(err) {
		return FailureCancelled
	}
	if errors.Is(err, structuring.ErrNoOutput) {
		return FailureStructuring
	}
	switch extraction.Classify(err) {
	case extraction.KindNetwork:
		return FailureNetwork
	case extraction.KindExtraction:
		return FailureExtraction
	default:
		return FailureUnknown
	}
}
