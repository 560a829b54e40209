package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Recommendation requests served, by endpoint and method.",
		},
		[]string{"endpoint", "method"},
	)

	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallback_total",
			Help: "Times the popularity or category fallback produced the result.",
		},
		[]string{"reason"},
	)

	GeneratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generator_failures_total",
			Help: "Candidate generator failures that degraded to an empty list.",
		},
		[]string{"generator"},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_total",
			Help: "Recommendation cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Wall time of a full training run.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_training_runs_total",
			Help: "Training runs by status (success, failed).",
		},
		[]string{"status"},
	)

	LastTrainingSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_training_last_success_timestamp",
			Help: "Unix time of the last successful training run.",
		},
	)

	ModelLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "1 when the model kind is loaded in the serving snapshot.",
		},
		[]string{"kind"},
	)
)

// SetModelLoaded records whether each model kind is being served.
func SetModelLoaded(kind string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	ModelLoaded.WithLabelValues(kind).Set(v)
}
