// Package metrics registers the Prometheus instruments for the scan
// pipeline. Counters are package-level promauto vars so any layer can bump
// them without threading a registry around.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IdentifiersChecked counts every identifier drawn from the sequence.
	IdentifiersChecked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_identifiers_checked_total",
		Help: "The total number of identifiers drawn from the enumeration range.",
	})
	// PagesFetched counts completed fetches by classified outcome.
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_pages_fetched_total",
		Help: "The total number of fetched pages by existence outcome.",
	}, []string{"outcome"})
	// RecordsExtracted counts records that passed the substantive check
	// and were persisted.
	RecordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_records_extracted_total",
		Help: "The total number of vessel records extracted and persisted.",
	})
	// PipelineErrors counts identifiers that ended in an error.
	PipelineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_pipeline_errors_total",
		Help: "The total number of identifiers whose processing failed.",
	})
	// FetchDuration tracks fetch latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_fetch_duration_seconds",
		Help:    "Time spent fetching one detail page.",
		Buckets: prometheus.DefBuckets,
	})
	// GenerativeCalls counts generative-pass invocations by result.
	GenerativeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_generative_calls_total",
		Help: "The total number of generative extraction calls by result.",
	}, []string{"result"})
)
