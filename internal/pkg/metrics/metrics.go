package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portal_wallet"

var (
	// ProviderRequests counts calls to the wallet provider REST API.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Wallet provider REST requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// ProviderLatency observes provider REST round trips, retries included.
	ProviderLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Wallet provider REST request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// SignerRequests counts signing/broadcast calls made through the SDK handle.
	SignerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signer_requests_total",
		Help:      "Signer RPC calls by method and outcome.",
	}, []string{"method", "outcome"})

	// SessionsCreated counts wallet session (re)constructions.
	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Wallet sessions constructed, including re-creation after an API key change.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call twice.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ProviderRequests, ProviderLatency, SignerRequests, SessionsCreated)
	})
}

// ObserveProvider records one finished provider call.
func ObserveProvider(endpoint string, started time.Time, err error) {
	ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	ProviderRequests.WithLabelValues(endpoint, Outcome(err)).Inc()
}

// Outcome labels an error as "ok" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
