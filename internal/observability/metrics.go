package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "traffic_insights"

// Metrics holds the Prometheus counters, histograms, and gauges for an analysis run.
type Metrics struct {
	RecordsLoaded  prometheus.Counter
	RecordsDropped *prometheus.CounterVec // labels: reason={missing,excluded}
	RecordsWritten *prometheus.CounterVec // labels: sink

	SummariesComputed prometheus.Counter
	SummariesSkipped  *prometheus.CounterVec // labels: summary

	SinkErrors  *prometheus.CounterVec // labels: sink
	RunDuration prometheus.Histogram
	ReportReady prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Raw records read from the input dataset.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records removed during cleaning, by reason.",
		}, []string{"reason"}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Cleaned records delivered, by sink.",
		}, []string{"sink"}),
		SummariesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_computed_total",
			Help:      "Grouped summaries computed.",
		}),
		SummariesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_skipped_total",
			Help:      "Summaries skipped because the data lacked a required column.",
		}, []string{"summary"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed sink attempts, by sink.",
		}, []string{"sink"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load, clean, report, and write run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ReportReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_ready",
			Help:      "1 once a report has been built, 0 before.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsLoaded,
		m.RecordsDropped,
		m.RecordsWritten,
		m.SummariesComputed,
		m.SummariesSkipped,
		m.SinkErrors,
		m.RunDuration,
		m.ReportReady,
	}
}
