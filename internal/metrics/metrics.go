// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the marketplace operations behind it.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by route pattern and response status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// Operations counts marketplace operations by outcome. result is
	// "success", "rejected" (a guard failed) or "error".
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_market_operations_total",
			Help: "Marketplace operations by name and result.",
		},
		[]string{"op", "result"},
	)
)

// RecordOperation increments the operation counter.
func RecordOperation(op string, success bool) {
	result := "rejected"
	if success {
		result = "success"
	}
	Operations.WithLabelValues(op, result).Inc()
}

// RecordOperationError counts a fatal operation failure.
func RecordOperationError(op string) {
	Operations.WithLabelValues(op, "error").Inc()
}

// RecordRequest increments the HTTP request counter. route should be the
// registered pattern, not the raw path, to keep cardinality bounded.
func RecordRequest(method, route string, status int) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
