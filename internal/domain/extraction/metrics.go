package extraction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "pipeline",
		Name:      "documents_processed_total",
		Help:      "Documents whose raw text was extracted successfully.",
	})
	documentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "pipeline",
		Name:      "document_failures_total",
		Help:      "Documents that failed extraction (cancellations excluded).",
	})
	processDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "pipeline",
		Name:      "process_duration_seconds",
		Help:      "Wall time of the raw-text extraction stage.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
