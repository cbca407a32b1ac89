// Package observability holds the Prometheus collectors for calls made to Strava.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for upstream calls.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeAuthError = "auth_error"
	OutcomeNetwork   = "network_error"
	OutcomeError     = "error"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strava_data_analyser",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Number of upstream calls grouped by operation and outcome.",
	}, []string{"operation", "outcome"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "strava_data_analyser",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of upstream calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	tokenExchangedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "strava_data_analyser",
		Subsystem: "oauth",
		Name:      "last_token_exchange_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful token exchange.",
	})

	listTruncatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strava_data_analyser",
		Subsystem: "upstream",
		Name:      "activity_list_full_pages_total",
		Help:      "Number of activity listings that filled the single requested page and may be truncated.",
	})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamDuration, tokenExchangedGauge, listTruncatedCounter)
}

// RecordUpstream counts one upstream call and its latency.
func RecordUpstream(operation, outcome string, d time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordTokenExchanged updates the token exchange watermark gauge.
func RecordTokenExchanged(ts time.Time) {
	if ts.IsZero() {
		return
	}
	tokenExchangedGauge.Set(float64(ts.Unix()))
}

func RecordFullActivityPage() {
	listTruncatedCounter.Inc()
}
