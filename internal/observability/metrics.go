package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a scraper run.
type Metrics struct {
	YearsProcessed *prometheus.CounterVec // labels: result={success,skipped,failed}
	YearFailures   *prometheus.CounterVec // labels: kind={transport,archive,no_station_data,unexpected}
	BatchRunning   prometheus.Gauge

	// Per-stage metrics.
	ArchiveBytes           prometheus.Histogram
	DownloadDuration       prometheus.Histogram
	YearProcessingDuration prometheus.Histogram
	RowsWritten            prometheus.Counter

	// Side-channel metrics.
	OutcomesPublished *prometheus.CounterVec // labels: outcome={success,error}
	ArtifactsMirrored *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all scraper metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.YearsProcessed,
		m.YearFailures,
		m.BatchRunning,
		m.ArchiveBytes,
		m.DownloadDuration,
		m.YearProcessingDuration,
		m.RowsWritten,
		m.OutcomesPublished,
		m.ArtifactsMirrored,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		YearsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inmet_scraper",
			Name:      "years_processed_total",
			Help:      "Years processed by result.",
		}, []string{"result"}),
		YearFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inmet_scraper",
			Name:      "year_failures_total",
			Help:      "Failed years by failure kind.",
		}, []string{"kind"}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inmet_scraper",
			Name:      "batch_running",
			Help:      "1 while a batch run is in progress, 0 otherwise.",
		}),
		ArchiveBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inmet_scraper",
			Name:      "archive_bytes",
			Help:      "Size of downloaded yearly archives in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 10),
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inmet_scraper",
			Name:      "download_duration_seconds",
			Help:      "Duration of yearly archive downloads.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		YearProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inmet_scraper",
			Name:      "year_processing_duration_seconds",
			Help:      "Duration of a complete fetch-extract-parse-write cycle for one year.",
			Buckets:   []float64{0.01, 0.1, 1, 5, 10, 30, 60, 120, 300, 600},
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inmet_scraper",
			Name:      "rows_written_total",
			Help:      "Station rows written to Parquet artifacts.",
		}),
		OutcomesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inmet_scraper",
			Name:      "outcomes_published_total",
			Help:      "Outcome events published to Kafka by outcome.",
		}, []string{"outcome"}),
		ArtifactsMirrored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inmet_scraper",
			Name:      "artifacts_mirrored_total",
			Help:      "Artifacts copied to object storage by outcome.",
		}, []string{"outcome"}),
	}
}
