package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for PNR verification.
type Metrics struct {
	VerifyRequests *prometheus.CounterVec
	VerifyLatency  prometheus.Histogram
}

// New registers and returns PNR metrics collectors.
func New() *Metrics {
	return &Metrics{
		VerifyRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiceye_pnr_verify_requests_total",
			Help: "Total number of PNR verification requests, labeled by outcome",
		}, []string{"outcome"}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civiceye_pnr_verify_latency_seconds",
			Help:    "Latency of PNR verification including ledger lookup",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Outcome labels for VerifyRequests.
const (
	OutcomeVerified     = "verified"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeBadFormat    = "bad_format"
	OutcomeStoreFailure = "store_failure"
)

// ObserveVerify records one verification request.
func (m *Metrics) ObserveVerify(outcome string, seconds float64) {
	m.VerifyRequests.WithLabelValues(outcome).Inc()
	m.VerifyLatency.Observe(seconds)
}
