package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "upstream_requests_total",
		Help:      "Requests sent to the WooCommerce API by operation and status code (0 for transport errors).",
	}, []string{"operation", "status"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of WooCommerce API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "Requests served by route and status code.",
	}, []string{"method", "route", "status"})

	staleResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "catalog_stale_results_total",
		Help:      "Catalog fetch results discarded because a newer request superseded them.",
	}, []string{"resource"})
)

func ObserveUpstream(operation string, status int, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func StaleResult(resource string) {
	staleResults.WithLabelValues(resource).Inc()
}
