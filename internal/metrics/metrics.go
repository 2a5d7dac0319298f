package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studio_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// KanbanMoves counts task moves by source (menu or drag) and result.
	KanbanMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_kanban_moves_total",
		Help: "Total number of task moves between kanban buckets",
	}, []string{"source", "result"})

	TimeTrackingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_time_tracking_events_total",
		Help: "Time tracking start/stop attempts by result",
	}, []string{"event", "result"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_query_cache_lookups_total",
		Help: "Query cache lookups by entity and hit/miss",
	}, []string{"entity", "result"})
)

// Result turns an error into the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
