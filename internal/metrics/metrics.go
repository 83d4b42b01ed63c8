package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// Booking lifecycle
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_booking_transitions_total",
			Help: "Committed booking lifecycle writes by operation",
		},
		[]string{"operation"},
	)

	// Secondary store mirror
	MirrorWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_mirror_writes_total",
			Help: "Mirror writes by collection and result (success, stale, failure, rejected)",
		},
		[]string{"collection", "result"},
	)

	MirrorWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_mirror_write_duration_seconds",
			Help:    "Duration of mirror writes in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"collection"},
	)

	MirrorRebuildRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_mirror_rebuild_records_total",
			Help: "Records written by mirror rebuilds",
		},
		[]string{"collection"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "travel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Catalog cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_cache_hits_total",
			Help: "Catalog cache hits",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_cache_misses_total",
			Help: "Catalog cache misses",
		},
		[]string{"kind"},
	)

	// Notifications
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_notifications_published_total",
			Help: "Booking events handed to the broker by result",
		},
		[]string{"event", "result"},
	)
)

func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordMirrorWrite(collection, result string, duration time.Duration) {
	MirrorWrites.WithLabelValues(collection, result).Inc()
	MirrorWriteDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

func RecordNotification(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	NotificationsPublished.WithLabelValues(event, result).Inc()
}
