// Package metrics registers the Prometheus collectors of the watchlist
// service. Everything is registered on the default registry and served by
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_http_requests_total",
			Help: "Total HTTP requests handled by the watchlist service",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchlist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// WatchlistOps counts watchlist mutations by operation and outcome
	// (created, already_exists, updated, deleted, not_found, invalid, error).
	WatchlistOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_operations_total",
			Help: "Watchlist mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	OMDbRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_omdb_requests_total",
			Help: "Outbound OMDb requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// CacheHits and CacheMisses are labelled by layer: "redis" for the HTTP
	// response cache, "lru" for the in-process OMDb detail cache.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_cache_hits_total",
			Help: "Cache hits by layer",
		},
		[]string{"layer"},
	)
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_cache_misses_total",
			Help: "Cache misses by layer",
		},
		[]string{"layer"},
	)

	// EventsPublished counts outgoing watchlist events by type and result.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_events_published_total",
			Help: "Watchlist events published to RabbitMQ",
		},
		[]string{"type", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_events_consumed_total",
			Help: "Watchlist events processed by the activity consumer",
		},
		[]string{"result"},
	)
)
