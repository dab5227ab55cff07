package indexing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts files run through the pipeline.
	// Labels: result (success, error)
	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "indexing",
			Name:      "files_processed_total",
			Help:      "Total number of files processed by the indexing pipeline",
		},
		[]string{"result"},
	)

	// ParagraphsProcessed counts paragraphs sent for proposition extraction.
	ParagraphsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "indexing",
			Name:      "paragraphs_processed_total",
			Help:      "Total number of paragraphs sent for proposition extraction",
		},
	)

	// PropositionsExtracted counts retrievable units produced.
	PropositionsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "indexing",
			Name:      "propositions_extracted_total",
			Help:      "Total number of propositions extracted",
		},
	)

	// ModelCalls counts proposition extraction calls.
	// Labels: result (success, error)
	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "indexing",
			Name:      "model_calls_total",
			Help:      "Total number of proposition extraction model calls",
		},
		[]string{"result"},
	)

	// FileDuration tracks per-file extraction time.
	FileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "indexing",
			Name:      "file_duration_seconds",
			Help:      "Duration of proposition extraction per file in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)
)
