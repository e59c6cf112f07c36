// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArticlesPublished counts articles that became visible to readers.
	ArticlesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowhere_articles_published_total",
		Help: "Total number of articles published",
	})

	// ClapsTotal counts clap actions (not distinct clappers).
	ClapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowhere_claps_total",
		Help: "Total number of clap actions",
	})

	// CommentsTotal counts comments created.
	CommentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowhere_comments_total",
		Help: "Total number of comments created",
	})

	// FollowsTotal counts follow and unfollow actions by kind.
	FollowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowhere_follow_actions_total",
		Help: "Total number of follow graph changes",
	}, []string{"action"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowhere_cache_lookups_total",
		Help: "Total cache lookups by result",
	}, []string{"result"})

	// CountersReconciled counts articles whose denormalized counters were corrected.
	CountersReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowhere_counters_reconciled_total",
		Help: "Articles whose counters were corrected by reconciliation",
	}, []string{"counter"})

	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knowhere_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnections is the gauge of live engagement stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "knowhere_websocket_connections",
		Help: "Number of active engagement stream connections",
	})

	// WebSocketBackpressureDrops counts events dropped because a client was too slow.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowhere_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
