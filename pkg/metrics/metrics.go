// Package metrics exposes the Prometheus metrics recorded by uniunit.
//
// # Basic Usage
//
//	// Time a conversion and record its outcome
//	timer := metrics.NewTimer("convert")
//	result, err := remapper.Convert(v)
//	timer.ObserveConversion(err)
//
//	// Count target-unit cache lookups
//	metrics.TargetUnitCache.WithLabelValues("hit").Inc()
//
// All collectors are registered with the default Prometheus registry on
// package initialization and are served by the HTTP server's /metrics route.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	// Conversions counts conversions by operation and outcome.
	// Labels: operation (convert/unit_system/quick_convert/...), status (success/failure)
	//
	// Example:
	//	metrics.Conversions.WithLabelValues("convert", metrics.StatusSuccess).Inc()
	Conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniunit_conversions_total",
			Help: "Total number of unit conversions",
		},
		[]string{"operation", "status"},
	)

	// ConversionLatency tracks conversion latency in seconds. Conversions are
	// pure in-memory computations, so the buckets start at one microsecond.
	ConversionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "uniunit_conversion_duration_seconds",
			Help: "Conversion latency in seconds",
			Buckets: []float64{
				1e-6, // 1μs - cached target unit
				1e-5, // 10μs
				1e-4, // 100μs - target unit synthesis
				1e-3, // 1ms
				1e-2, // 10ms
			},
		},
		[]string{"operation"},
	)

	// TargetUnitCache counts remapper cache lookups.
	// Labels: result (hit/miss)
	TargetUnitCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniunit_target_unit_cache_total",
			Help: "Target unit cache lookups by result",
		},
		[]string{"result"},
	)

	// PresetsRegistered tracks the number of registered unit system presets
	PresetsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uniunit_presets_registered",
			Help: "Number of registered unit system presets",
		},
	)

	// HTTPRequests counts HTTP requests by method, route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniunit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPLatency tracks HTTP request latency in seconds
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uniunit_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RateLimited counts requests rejected by the rate limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uniunit_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name is used as the operation label when the timer is observed.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed duration since creation. The timer can be stopped
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveConversion records the elapsed time in ConversionLatency and counts
// the conversion as a success or failure depending on err.
func (t *Timer) ObserveConversion(err error) time.Duration {
	d := t.Stop()
	ConversionLatency.WithLabelValues(t.name).Observe(d.Seconds())
	Conversions.WithLabelValues(t.name, Status(err)).Inc()
	return d
}

// ObserveHTTP records a finished HTTP request.
func ObserveHTTP(method, route string, code int, d time.Duration) {
	HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// Status maps an error to the status label value.
func Status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
