package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lagoon_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the assessment pipeline.
type Metrics struct {
	ForecastsConsumed   prometheus.Counter
	AssessmentsProduced prometheus.Counter
	TransformErrors     prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Assessment outcome metrics.
	Alerts      *prometheus.CounterVec // labels: type={ok,warning,danger,none}
	HourLevels  *prometheus.CounterVec // labels: kind={safety,comfort}, level
	AssessCache *prometheus.CounterVec // labels: result={hit,miss}

	// Synchronous API metrics.
	AssessRequests *prometheus.CounterVec // labels: outcome={ok,bad_request,rate_limited}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ForecastsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_consumed_total",
			Help:      "Total forecast payloads read from the source topic.",
		}),
		AssessmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_produced_total",
			Help:      "Total assessments written to the sink.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total forecast payloads that could not be assessed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of forecasts per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assess-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Assessments produced by alert type.",
		}, []string{"type"}),
		HourLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hour_levels_total",
			Help:      "Assessed hours by semaphore kind and risk level.",
		}, []string{"kind", "level"}),
		AssessCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assess_cache_total",
			Help:      "Assessment cache lookups by result.",
		}, []string{"result"}),
		AssessRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assess_requests_total",
			Help:      "Synchronous assess API requests by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.ForecastsConsumed,
		m.AssessmentsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Alerts,
		m.HourLevels,
		m.AssessCache,
		m.AssessRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ForecastsConsumed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "forecasts_consumed_total"}),
		AssessmentsProduced:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "assessments_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		Alerts:                  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "alerts_total"}, []string{"type"}),
		HourLevels:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "hour_levels_total"}, []string{"kind", "level"}),
		AssessCache:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "assess_cache_total"}, []string{"result"}),
		AssessRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "assess_requests_total"}, []string{"outcome"}),
	}
}
