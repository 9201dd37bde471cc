package convert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "convert",
		Name:      "conversions_total",
		Help:      "Statements converted end to end.",
	})
	conversionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bank_statement_converter",
		Subsystem: "convert",
		Name:      "conversion_failures_total",
		Help:      "Conversions that failed after extraction (cancellations excluded).",
	})
)
