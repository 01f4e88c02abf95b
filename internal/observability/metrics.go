package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "census_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for compile runs.
type Metrics struct {
	CommunitiesProcessed prometheus.Counter
	RowsWritten          prometheus.Counter
	RowWriteErrors       prometheus.Counter
	WorkersActive        prometheus.Gauge
	CompileDuration      prometheus.Histogram

	// Report fetching.
	ReportCache      *prometheus.CounterVec   // labels: result={hit,miss}
	ReportDownloads  *prometheus.CounterVec   // labels: outcome={success,http_error,network_error,write_error}
	DownloadDuration prometheus.Histogram

	// Extraction.
	Extractions *prometheus.CounterVec // labels: status={complete,partial,empty,absent,invalid,no_page}

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		CommunitiesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "communities_processed_total",
			Help:      "Communities run through fetch and extract.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows appended to the output table.",
		}),
		RowWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_write_errors_total",
			Help:      "Rows that could not be written to a sink.",
		}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_active",
			Help:      "Jobs currently running in the worker pool.",
		}),
		CompileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Wall-clock duration of a complete compile run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		ReportDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_downloads_total",
			Help:      "Report downloads by outcome.",
		}, []string{"outcome"}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_download_duration_seconds",
			Help:      "Report download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Report extractions by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommunitiesProcessed,
		m.RowsWritten,
		m.RowWriteErrors,
		m.WorkersActive,
		m.CompileDuration,
		m.ReportCache,
		m.ReportDownloads,
		m.DownloadDuration,
		m.Extractions,
	}
}

// Push sends the current metric values to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
