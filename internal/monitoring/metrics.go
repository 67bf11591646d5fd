package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghpool_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"method", "status_class"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ghpool_request_duration_seconds",
			Help:    "Upstream API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghpool_retry_attempts_total",
			Help: "Total number of retry attempts by outcome",
		},
		[]string{"outcome"},
	)

	RotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghpool_rotations_total",
			Help: "Total number of token rotations by trigger",
		},
		[]string{"trigger"},
	)

	RotationExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ghpool_rotation_exhausted_total",
			Help: "Rotation passes that found no token above the threshold",
		},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ghpool_probe_duration_seconds",
			Help:    "Rate limit probe latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	ProbeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghpool_probe_errors_total",
			Help: "Rate limit probe failures by transport error kind",
		},
		[]string{"kind"},
	)

	PoolRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ghpool_token_remaining",
			Help: "Last observed remaining quota per token",
		},
		[]string{"token"},
	)
)
