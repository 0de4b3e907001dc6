package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "goldentime"

var (
	// HTTPRequests counts handled requests by route pattern and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route pattern
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// OTPDispatch counts one-time code emails by outcome
	OTPDispatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_dispatch_total",
		Help:      "One-time code emails, by outcome (sent, failed).",
	}, []string{"outcome"})

	// Logins counts authentication attempts by role and outcome
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Authentication attempts, by role, step and outcome.",
	}, []string{"role", "step", "outcome"})

	// QRCacheLookups counts scan code cache hits and misses
	QRCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "qr_cache_lookups_total",
		Help:      "Scan code cache lookups, by result (hit, miss).",
	}, []string{"result"})
)
