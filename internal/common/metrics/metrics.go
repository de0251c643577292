// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_runs_total",
			Help: "Provider invocations by outcome status",
		},
		[]string{"provider", "status"},
	)

	ProviderRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_run_duration_seconds",
			Help:    "Duration of provider pipeline runs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"provider"},
	)

	ProvidersInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "providers_in_flight",
			Help: "Number of provider runs currently executing",
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"provider", "result"},
	)

	RepairAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "json_repair_attempts_total",
			Help: "JSON repair service calls by result",
		},
		[]string{"result"},
	)
)
