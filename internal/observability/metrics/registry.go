package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Content metrics
var (
	// ContentMutationsTotal counts create/update/delete calls by kind and outcome
	ContentMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_content_mutations_total",
			Help: "Content record mutations by kind, operation and status",
		},
		[]string{"kind", "op", "status"},
	)

	// ContentRecords tracks how many records each list held at its last refresh
	ContentRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sitecms_content_records",
			Help: "Number of content records per kind at last list refresh",
		},
		[]string{"kind"},
	)

	// PublicCacheResults counts public read cache hits and misses
	PublicCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_public_cache_results_total",
			Help: "Public read cache lookups by result",
		},
		[]string{"result"},
	)
)

// Media metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_uploads_total",
			Help: "Image uploads by bucket and status",
		},
		[]string{"bucket", "status"},
	)

	UploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitecms_upload_size_bytes",
			Help:    "Size of accepted image uploads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)
)

// Drafting and session metrics
var (
	AIDraftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_ai_drafts_total",
			Help: "AI draft requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	AdminSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitecms_admin_sessions_active",
			Help: "Signed-in editor sessions held by the server",
		},
	)

	SignInAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_sign_in_attempts_total",
			Help: "Editor sign-in attempts by result",
		},
		[]string{"result"},
	)
)

// Database pool metrics
var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitecms_db_connections_active",
			Help: "Connections in use",
		},
	)
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitecms_db_connections_idle",
			Help: "Idle connections",
		},
	)
)
