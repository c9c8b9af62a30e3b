package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// OutcomeSuccess labels fully explained predictions.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels requests rejected for bad input (validation or
	// unknown category).
	OutcomeInvalid = "invalid"
	// OutcomeError labels internal failures (shape or inference defects).
	OutcomeError = "error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "explain_engine",
			Name:      "predictions_total",
			Help:      "Total number of prediction explanations handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	predictionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "explain_engine",
			Name:      "prediction_seconds",
			Help:      "Full explanation latency (transform, inference, attribution, reasons) in seconds.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)

	attributionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "explain_engine",
			Name:      "attribution_seconds",
			Help:      "Attribution engine latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "explain_engine",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, partitioned by status code and method.",
		},
		[]string{"code", "method"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "explain_engine",
			Name:      "http_request_seconds",
			Help:      "HTTP handler latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Register attaches the engine's collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		predictionsTotal,
		predictionDurationSeconds,
		attributionDurationSeconds,
		httpRequestsTotal,
		httpRequestDuration,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePrediction records a prediction duration and outcome label.
func ObservePrediction(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeInvalid, OutcomeError:
	default:
		outcome = OutcomeSuccess
	}
	predictionsTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	predictionDurationSeconds.Observe(duration.Seconds())
}

// ObserveAttribution records how long the attribution engine took.
func ObserveAttribution(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	attributionDurationSeconds.Observe(duration.Seconds())
}

// InstrumentHandler wraps an HTTP handler with request counting and latency
// observation.
func InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(httpRequestsTotal,
		promhttp.InstrumentHandlerDuration(httpRequestDuration, next))
}
