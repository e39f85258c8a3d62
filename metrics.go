package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurepro_wizard_transitions_total",
			Help: "Wizard step transitions by direction and result",
		},
		[]string{"direction", "result"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurepro_exports_total",
			Help: "Comparison exports by format and result",
		},
		[]string{"format", "result"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insurepro_export_duration_seconds",
			Help:    "Time taken to render a comparison export",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	profileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurepro_profile_operations_total",
			Help: "Advisor profile library operations by kind and result",
		},
		[]string{"operation", "result"},
	)
)

func recordTransition(direction, result string) {
	wizardTransitions.WithLabelValues(direction, result).Inc()
}

func recordExport(format string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	exportsTotal.WithLabelValues(format, result).Inc()
	exportDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}

func recordProfileOp(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	profileOperations.WithLabelValues(operation, result).Inc()
}
