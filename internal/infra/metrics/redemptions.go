package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		redemptionLatency,
		deliveryFailuresTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome (fake/already-used/limit-reached/success/error).",
		},
		[]string{"outcome"},
	)

	redemptionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redemption_latency_ms",
			Help:    "End-to-end redemption latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
	)

	deliveryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_failures_total",
			Help: "Outbound messages that failed to send.",
		},
	)
)

// ObserveRedemption records one finished attempt.
func ObserveRedemption(outcome string, elapsed time.Duration) {
	redemptionsTotal.WithLabelValues(outcome).Inc()
	redemptionLatency.Observe(float64(elapsed.Milliseconds()))
}

// IncDeliveryFailure counts a failed outbound send.
func IncDeliveryFailure() {
	deliveryFailuresTotal.Inc()
}
