package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "envis"

// Metrics holds the Prometheus counters and histograms for artifact generation.
type Metrics struct {
	ArtifactsGenerated *prometheus.CounterVec   // labels: kind, outcome={success,error}
	ArtifactDuration   *prometheus.HistogramVec // labels: kind

	RowsRead        prometheus.Counter
	FeaturesEmitted prometheus.Counter
	RowsDownsampled prometheus.Counter
	UploadsReceived prometheus.Counter
	UploadBytes     prometheus.Histogram
	BoundaryCache   *prometheus.CounterVec // labels: result={hit,miss}
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	KafkaEnabled    prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		ArtifactsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_generated_total",
			Help:      "Artifacts written, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ArtifactDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_duration_seconds",
			Help:      "Time to produce one artifact from its input file.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Tabular rows read from uploaded or exported CSV files.",
		}),
		FeaturesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_emitted_total",
			Help:      "GeoJSON point features written.",
		}),
		RowsDownsampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_downsampled_total",
			Help:      "Valid rows dropped by the point cap.",
		}),
		UploadsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_received_total",
			Help:      "CSV files accepted by the upload endpoint.",
		}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 10),
		}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_cache_total",
			Help:      "Boundary layer cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_events_published_total",
			Help:      "Artifact notifications sent to Kafka, by outcome.",
		}, []string{"outcome"}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_enabled",
			Help:      "1 when artifact events are published to Kafka, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ArtifactsGenerated,
		m.ArtifactDuration,
		m.RowsRead,
		m.FeaturesEmitted,
		m.RowsDownsampled,
		m.UploadsReceived,
		m.UploadBytes,
		m.BoundaryCache,
		m.EventsPublished,
		m.KafkaEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
