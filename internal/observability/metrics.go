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
	// Provider metrics
	ProviderRequestLatency *prometheus.HistogramVec
	ProviderRequestErrors  *prometheus.CounterVec
	ProviderRetries        *prometheus.CounterVec
	CacheLookups           *prometheus.CounterVec
	StreamCandles          *prometheus.CounterVec

	// Batch fetch metrics
	BatchPairsRequested prometheus.Counter
	BatchPairsFailed    prometheus.Counter
	BatchDuplicates     prometheus.Counter
	BatchDuration       prometheus.Histogram

	// Analysis metrics
	TrendAnalyses     *prometheus.CounterVec
	TrendScore        prometheus.Histogram
	MovementAnalyses  *prometheus.CounterVec
	TraderRecordsSkip *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gem_finder"
	}

	return &Metrics{
		// Provider metrics
		ProviderRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_latency_seconds",
			Help:      "Market data provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ProviderRequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_errors_total",
			Help:      "Total number of failed provider requests by endpoint",
		}, []string{"endpoint"}),
		ProviderRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Total number of provider request retries by reason",
		}, []string{"endpoint", "reason"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by kind and result",
		}, []string{"kind", "result"}),
		StreamCandles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "stream_candles_total",
			Help:      "Total number of completed candles recorded from the price stream",
		}, []string{"timeframe"}),

		// Batch fetch metrics
		BatchPairsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "pairs_requested_total",
			Help:      "Total number of unique (token, timeframe) pairs fetched",
		}),
		BatchPairsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "pairs_failed_total",
			Help:      "Total number of (token, timeframe) fetches that failed",
		}),
		BatchDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "pairs_deduplicated_total",
			Help:      "Total number of duplicate pairs skipped within a batch",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch fetch duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		// Analysis metrics
		TrendAnalyses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trend_total",
			Help:      "Total number of trend analyses by age category and direction",
		}, []string{"age_category", "direction"}),
		TrendScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trend_score",
			Help:      "Distribution of composite trend scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		MovementAnalyses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "movement_total",
			Help:      "Total number of movement analyses by window and structure type",
		}, []string{"window", "structure"}),
		TraderRecordsSkip: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trader_records_skipped_total",
			Help:      "Total number of trader records skipped by reason",
		}, []string{"reason"}),

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

		// API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status",
		}, []string{"route", "status"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordProviderRequest records latency and failure of a provider call.
func RecordProviderRequest(endpoint string, seconds float64, err error) {
	DefaultMetrics.ProviderRequestLatency.WithLabelValues(endpoint).Observe(seconds)
	if err != nil {
		DefaultMetrics.ProviderRequestErrors.WithLabelValues(endpoint).Inc()
	}
}

// RecordProviderRetry increments the retry counter.
func RecordProviderRetry(endpoint, reason string) {
	DefaultMetrics.ProviderRetries.WithLabelValues(endpoint, reason).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordStreamCandle increments the streamed candle counter.
func RecordStreamCandle(timeframe string) {
	DefaultMetrics.StreamCandles.WithLabelValues(timeframe).Inc()
}

// RecordBatch records the outcome of one batch fetch.
func RecordBatch(unique, duplicates, failed int, seconds float64) {
	DefaultMetrics.BatchPairsRequested.Add(float64(unique))
	DefaultMetrics.BatchDuplicates.Add(float64(duplicates))
	DefaultMetrics.BatchPairsFailed.Add(float64(failed))
	DefaultMetrics.BatchDuration.Observe(seconds)
}

// RecordTrendAnalysis records a finished trend analysis.
func RecordTrendAnalysis(ageCategory, direction string, score float64) {
	DefaultMetrics.TrendAnalyses.WithLabelValues(ageCategory, direction).Inc()
	DefaultMetrics.TrendScore.Observe(score)
}

// RecordMovementAnalysis records a finished movement analysis.
func RecordMovementAnalysis(window, structure string) {
	DefaultMetrics.MovementAnalyses.WithLabelValues(window, structure).Inc()
}

// RecordTraderSkipped records trader records dropped during classification.
func RecordTraderSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	DefaultMetrics.TraderRecordsSkip.WithLabelValues(reason).Add(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(route, status string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, status).Inc()
}
