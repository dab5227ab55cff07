package uploads

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesStored counts files written to the upload directory.
	FilesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "uploads",
			Name:      "files_stored_total",
			Help:      "Total number of uploaded files stored",
		},
	)

	// BytesStored counts bytes written to the upload directory.
	BytesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "uploads",
			Name:      "bytes_stored_total",
			Help:      "Total number of uploaded bytes stored",
		},
	)
)
