package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by the
// four tools. Everything registers on a private registry so a finished run can
// hand the complete set to the Pushgateway in one gather.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec // labels: source, outcome={success,error}
	HTTPRetries  *prometheus.CounterVec // labels: source
	RowsParsed   *prometheus.CounterVec // labels: source
	RowsSkipped  *prometheus.CounterVec // labels: source, reason

	StageDuration *prometheus.HistogramVec // labels: tool, stage
	RunDuration   *prometheus.GaugeVec     // labels: tool
	RunSuccess    *prometheus.GaugeVec     // labels: tool

	ReportsPublished prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates all tool metrics and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metr",
			Name:      "http_requests_total",
			Help:      "Upstream HTTP requests by data source and outcome.",
		}, []string{"source", "outcome"}),
		HTTPRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metr",
			Name:      "http_retries_total",
			Help:      "Retried upstream HTTP requests by data source.",
		}, []string{"source"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metr",
			Name:      "rows_parsed_total",
			Help:      "Data rows successfully parsed by source.",
		}, []string{"source"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metr",
			Name:      "rows_skipped_total",
			Help:      "Data rows skipped during parsing by source and reason.",
		}, []string{"source", "reason"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metr",
			Name:      "stage_duration_seconds",
			Help:      "Duration of one pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool", "stage"}),
		RunDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "metr",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the complete run.",
		}, []string{"tool"}),
		RunSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "metr",
			Name:      "run_success",
			Help:      "1 when the run completed, 0 when it failed.",
		}, []string{"tool"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metr",
			Name:      "reports_published_total",
			Help:      "Storm reports written to the Kafka topic.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPRetries,
		m.RowsParsed,
		m.RowsSkipped,
		m.StageDuration,
		m.RunDuration,
		m.RunSuccess,
		m.ReportsPublished,
	)

	return m
}

// Registry exposes the private registry for Pushgateway delivery and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
