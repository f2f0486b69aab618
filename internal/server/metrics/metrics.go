// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Like operation results.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	authOutcomes *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	likeOps      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		authOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gophfeed_auth_outcomes_total",
			Help: "Authentication attempts by outcome and rejection reason",
		}, []string{"outcome", "reason"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gophfeed_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophfeed_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		likeOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gophfeed_like_operations_total",
			Help: "Like and unlike operations by result",
		}, []string{"op", "result"}),
	}
}

func (m *Metrics) AuthOutcome(outcome, reason string) {
	m.authOutcomes.WithLabelValues(outcome, reason).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) LikeOp(op, result string) {
	m.likeOps.WithLabelValues(op, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
