package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UnitsIndexed counts units embedded into any index.
	UnitsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "vectorstore",
			Name:      "units_indexed_total",
			Help:      "Total number of retrievable units embedded into indexes",
		},
	)

	// BuildDuration tracks how long index builds take, embedding included.
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "vectorstore",
			Name:      "build_duration_seconds",
			Help:      "Duration of index builds in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SearchesTotal counts similarity searches.
	// Labels: result (success, empty, error)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "vectorstore",
			Name:      "searches_total",
			Help:      "Total number of similarity searches",
		},
		[]string{"result"},
	)

	// QueryDuration tracks end-to-end query engine latency.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "vectorstore",
			Name:      "query_duration_seconds",
			Help:      "Duration of retrieval-augmented queries in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)
