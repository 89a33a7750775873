package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics track scraping job throughput and outcomes
var (
	// JobsTriggeredTotal counts scraping jobs accepted by trigger_job
	JobsTriggeredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraping_jobs_triggered_total",
			Help: "Total number of scraping jobs triggered",
		},
	)

	// JobsCompletedTotal counts terminal jobs by final status
	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraping_jobs_completed_total",
			Help: "Total number of scraping jobs reaching a terminal status",
		},
		[]string{"status"},
	)

	// JobDuration measures wall-clock time from trigger to terminal status
	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraping_job_duration_seconds",
			Help:    "Scraping job duration from trigger to completion",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// Article metrics track per-source extraction and persistence outcomes
var (
	// ArticlesScrapedTotal counts articles committed to storage per source
	ArticlesScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_scraped_total",
			Help: "Total number of articles persisted, by source",
		},
		[]string{"source"},
	)

	// ArticlesDuplicateTotal counts articles skipped as duplicates per source
	ArticlesDuplicateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_duplicate_total",
			Help: "Total number of articles skipped as duplicates, by source",
		},
		[]string{"source"},
	)

	// ExtractionFailuresTotal counts candidate pages whose extraction failed
	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_failures_total",
			Help: "Total number of candidate pages that failed content extraction",
		},
		[]string{"source"},
	)
)

// Content fetch metrics track candidate page retrieval
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Database metrics track connection pool health
var (
	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
