package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teletext_archive_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teletext_archive_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Render backend metrics
var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_renders_total",
			Help: "Total number of page render attempts",
		},
		[]string{"outcome"}, // "ok", "timeout", "crash", "unavailable"
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teletext_archive_render_duration_seconds",
			Help:    "Headless browser render duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
	)

	RendersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teletext_archive_renders_active",
			Help: "Number of render operations currently holding a browser slot",
		},
	)

	RendererRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teletext_archive_renderer_restarts_total",
			Help: "Times the browser allocator was discarded after repeated crashes",
		},
	)
)

// Thumbnail pipeline metrics
var (
	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teletext_archive_thumbnails_generated_total",
			Help: "Thumbnails successfully generated and persisted",
		},
	)

	ThumbnailsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teletext_archive_thumbnails_skipped_total",
			Help: "Pages skipped because a thumbnail already existed",
		},
	)

	ThumbnailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_thumbnails_failed_total",
			Help: "Thumbnail generation failures by stage",
		},
		[]string{"stage"}, // "render", "encode", "persist"
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teletext_archive_batches_active",
			Help: "Thumbnail generation batches currently running",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teletext_archive_batch_duration_seconds",
			Help:    "Wall time of a folder thumbnail batch",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	ThumbnailCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_thumbnail_cache_total",
			Help: "In-memory thumbnail byte cache hits and misses",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_fs_retry_attempts_total",
			Help: "Retry attempts for transient filesystem errors",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_fs_retry_success_total",
			Help: "Filesystem operations that succeeded after retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_fs_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teletext_archive_db_queries_total",
			Help: "Total number of metadata database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teletext_archive_db_query_duration_seconds",
			Help:    "Metadata database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)
