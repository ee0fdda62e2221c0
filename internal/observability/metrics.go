// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Input metrics
	InputRowsLoaded *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	RunErrors         prometheus.Counter

	// Artifact metrics
	ArtifactsPersisted *prometheus.CounterVec

	// Pension metrics
	PlatformsProcessed prometheus.Counter
	PlatformsSkipped   prometheus.Counter

	// Report metrics
	ReportsGenerated prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fintracker"
	}

	return &Metrics{
		InputRowsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inputs",
			Name:      "rows_loaded_total",
			Help:      "Total number of input rows loaded by kind",
		}, []string{"kind"}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),
		RunErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_errors_total",
			Help:      "Total number of non-fatal errors recorded during runs",
		}),

		ArtifactsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "artifacts_persisted_total",
			Help:      "Total number of derived records persisted by artifact",
		}, []string{"artifact"}),

		PlatformsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pension",
			Name:      "platforms_processed_total",
			Help:      "Total number of pension platforms reconciled",
		}),
		PlatformsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pension",
			Name:      "platforms_skipped_total",
			Help:      "Total number of pension platforms skipped for incomplete data",
		}),

		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordInputRows records loaded input rows of one kind.
func RecordInputRows(kind string, n int) {
	DefaultMetrics.InputRowsLoaded.WithLabelValues(kind).Add(float64(n))
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordRunErrors adds non-fatal run errors to the error counter.
func RecordRunErrors(n int) {
	DefaultMetrics.RunErrors.Add(float64(n))
}

// RecordArtifacts records persisted derived records for one artifact.
func RecordArtifacts(artifact string, n int) {
	DefaultMetrics.ArtifactsPersisted.WithLabelValues(artifact).Add(float64(n))
}

// RecordPensionPlatforms records processed and skipped platform counts.
func RecordPensionPlatforms(processed, skipped int) {
	DefaultMetrics.PlatformsProcessed.Add(float64(processed))
	DefaultMetrics.PlatformsSkipped.Add(float64(skipped))
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordSuccessfulRun updates the last successful run timestamp.
func RecordSuccessfulRun(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulRun.Set(float64(unixSeconds))
}
