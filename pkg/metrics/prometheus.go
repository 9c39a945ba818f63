package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"arina/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	objective     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arina_analyses_recorded_total",
				Help: "Total number of analysis records routed to a backend",
			},
			[]string{"backend", "type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arina_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		objective: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arina_last_objective_value",
				Help: "Last objective value computed per optimization mode",
			},
			[]string{"mode"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arina_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records an analysis routed to a persistence backend.
func (r *Recorder) RecordAnalysis(backend string, typ models.AnalysisType) {
	r.analysesTotal.WithLabelValues(backend, string(typ)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordObjective records the last objective value per optimization mode.
func (r *Recorder) RecordObjective(mode string, value float64) {
	r.objective.WithLabelValues(mode).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
