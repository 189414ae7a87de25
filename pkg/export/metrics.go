package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const policyLabel = "policy"

var (
	exportedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masonry_export_records_total",
		Help: "The number of geometry records emitted by the exporter.",
	}, []string{
		policyLabel,
	})

	booleanFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "masonry_boolean_fallbacks_total",
		Help: "The number of apertures that could not be subtracted and fell back to a marker.",
	})

	exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "masonry_export_duration_seconds",
		Help:    "The time taken to export a scene.",
		Buckets: prometheus.DefBuckets,
	}, []string{
		policyLabel,
	})
)
