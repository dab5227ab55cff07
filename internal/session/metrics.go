package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionsActive tracks the number of sessions held in memory.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "docchat",
		Subsystem: "session",
		Name:      "sessions_active",
		Help:      "Number of sessions held in memory",
	},
)
