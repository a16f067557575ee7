package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion and routing service

var (
	// Upstream API metrics
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_upstream_calls_total",
			Help: "Total number of ESPN API calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "laliga_upstream_call_duration_seconds",
			Help:    "Duration of ESPN API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "laliga_retries_total",
			Help: "Total number of retry attempts after backoff",
		},
	)

	// Data router metrics
	RouterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_router_requests_total",
			Help: "Total number of data router requests by served source",
		},
		[]string{"entity", "source"},
	)

	RouterFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_router_fallbacks_total",
			Help: "Total number of live-to-cache fallbacks",
		},
		[]string{"entity"},
	)

	// Ingestion metrics
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_ingest_runs_total",
			Help: "Total number of season ingestion runs",
		},
		[]string{"status"},
	)

	IngestWeeksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_ingest_weeks_total",
			Help: "Total number of per-week ingestion outcomes",
		},
		[]string{"status"},
	)

	MatchupsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "laliga_matchups_ingested_total",
			Help: "Total number of matchup records ingested",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "laliga_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "laliga_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laliga_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "laliga_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulIngest = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "laliga_last_successful_ingest_timestamp",
			Help: "Timestamp of last successful season ingestion",
		},
	)
)

// RecordUpstreamCall records an ESPN API call metric
func RecordUpstreamCall(endpoint, status string, duration float64) {
	UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	UpstreamCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRetry records a retry attempt
func RecordRetry() {
	RetriesTotal.Inc()
}

// RecordRouterRequest records which source served a router request
func RecordRouterRequest(entity, source string) {
	RouterRequestsTotal.WithLabelValues(entity, source).Inc()
}

// RecordRouterFallback records a live-to-cache fallback
func RecordRouterFallback(entity string) {
	RouterFallbacksTotal.WithLabelValues(entity).Inc()
}

// RecordIngestRun records the outcome of a season ingestion run
func RecordIngestRun(status string) {
	IngestRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		LastSuccessfulIngest.SetToCurrentTime()
	}
}

// RecordIngestWeek records a per-week ingestion outcome
func RecordIngestWeek(status string, matchups int) {
	IngestWeeksTotal.WithLabelValues(status).Inc()
	MatchupsIngestedTotal.Add(float64(matchups))
}

// RecordCacheHit records a response cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a response cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}
