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
	// Indexer metrics
	LiquidationsProcessed prometheus.Counter
	LiquidationsStored    prometheus.Counter
	DuplicatesSkipped     prometheus.Counter
	ProcessingErrors      *prometheus.CounterVec
	LastBlockSeen         prometheus.Gauge

	// Enrichment metrics
	RecordsEnriched    prometheus.Counter
	EnrichmentFailures *prometheus.CounterVec
	EnrichmentLatency  prometheus.Histogram

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// API metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec

	// Analytics metrics
	AggregationsComputed prometheus.Counter
	AggregationDuration  prometheus.Histogram
	SnapshotsArchived    prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulSnapshot  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "liquidation_radar"
	}

	return &Metrics{
		// Indexer metrics
		LiquidationsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "liquidations_processed_total",
			Help:      "Total number of liquidation events processed",
		}),
		LiquidationsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "liquidations_stored_total",
			Help:      "Total number of liquidation records stored to database",
		}),
		DuplicatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "duplicates_skipped_total",
			Help:      "Total number of duplicate liquidation events skipped",
		}),
		ProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "processing_errors_total",
			Help:      "Total number of event processing errors by type",
		}, []string{"error_type"}),
		LastBlockSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_block_seen",
			Help:      "Highest Ethereum block number seen",
		}),

		// Enrichment metrics
		RecordsEnriched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "records_enriched_total",
			Help:      "Total number of records enriched with prices and metadata",
		}),
		EnrichmentFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "failures_total",
			Help:      "Total number of enrichment failures by stage",
		}, []string{"stage"}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "latency_seconds",
			Help:      "Enrichment latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ethereum",
			Name:      "rpc_call_latency_seconds",
			Help:      "Ethereum RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by path and status",
		}, []string{"path", "status"}),
		HTTPRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		// Analytics metrics
		AggregationsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "aggregations_computed_total",
			Help:      "Total number of analytics aggregations computed",
		}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "aggregation_duration_seconds",
			Help:      "Analytics aggregation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "snapshots_archived_total",
			Help:      "Total number of analytics snapshots archived",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successfully stored liquidation",
		}),
		LastSuccessfulSnapshot: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_snapshot_timestamp",
			Help:      "Unix timestamp of last successful snapshot run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLiquidationProcessed increments the liquidations processed counter.
func RecordLiquidationProcessed() {
	DefaultMetrics.LiquidationsProcessed.Inc()
}

// RecordLiquidationStored increments the liquidations stored counter.
func RecordLiquidationStored() {
	DefaultMetrics.LiquidationsStored.Inc()
}

// RecordDuplicateSkipped increments the duplicates skipped counter.
func RecordDuplicateSkipped() {
	DefaultMetrics.DuplicatesSkipped.Inc()
}

// RecordProcessingError records an event processing error.
func RecordProcessingError(errorType string) {
	DefaultMetrics.ProcessingErrors.WithLabelValues(errorType).Inc()
}

// RecordEnrichment increments the records enriched counter.
func RecordEnrichment(seconds float64) {
	DefaultMetrics.RecordsEnriched.Inc()
	DefaultMetrics.EnrichmentLatency.Observe(seconds)
}

// RecordEnrichmentFailure records an enrichment failure by stage.
func RecordEnrichmentFailure(stage string) {
	DefaultMetrics.EnrichmentFailures.WithLabelValues(stage).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(path, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(path, status).Inc()
	DefaultMetrics.HTTPRequestLatency.WithLabelValues(path).Observe(seconds)
}

// RecordAggregation records an analytics aggregation run.
func RecordAggregation(seconds float64) {
	DefaultMetrics.AggregationsComputed.Inc()
	DefaultMetrics.AggregationDuration.Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
