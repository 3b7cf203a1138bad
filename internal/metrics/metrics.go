// Package metrics exposes Prometheus counters and histograms for connector
// operations and platform calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector records connector metrics. All methods are safe for concurrent use
// and a nil *Collector records nothing.
type Collector struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	recordsEmitted   *prometheus.CounterVec
	upstreamCalls    *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platconn_operations_total",
			Help: "Connector operations by command type and outcome.",
		}, []string{"command", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "platconn_operation_duration_seconds",
			Help:    "Connector operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		recordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platconn_records_emitted_total",
			Help: "Account and entitlement records sent to callers.",
		}, []string{"command"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platconn_upstream_requests_total",
			Help: "Platform API requests by call and status code.",
		}, []string{"call", "status_code"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "platconn_upstream_request_duration_seconds",
			Help:    "Platform API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
	}

	reg.MustRegister(
		c.operations,
		c.operationLatency,
		c.recordsEmitted,
		c.upstreamCalls,
		c.upstreamLatency,
	)

	return c
}

// RecordOperation records one finished connector operation.
func (c *Collector) RecordOperation(command string, err error, d time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.operations.WithLabelValues(command, outcome).Inc()
	c.operationLatency.WithLabelValues(command).Observe(d.Seconds())
}

// RecordEmitted counts records streamed for command.
func (c *Collector) RecordEmitted(command string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.recordsEmitted.WithLabelValues(command).Add(float64(n))
}

// RecordUpstreamCall records one platform request. statusCode 0 means the
// request never got a response.
func (c *Collector) RecordUpstreamCall(call string, statusCode int, d time.Duration) {
	if c == nil {
		return
	}
	c.upstreamCalls.WithLabelValues(call, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.WithLabelValues(call).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
