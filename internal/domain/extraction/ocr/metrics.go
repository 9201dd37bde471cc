package ocr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesRecognized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "ocr",
		Name:      "pages_recognized_total",
		Help:      "Pages successfully recognized by the OCR fallback.",
	})
	pageFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "ocr",
		Name:      "page_failures_total",
		Help:      "Pages skipped because recognition failed.",
	})
)
