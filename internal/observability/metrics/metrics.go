package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt results recorded per provider.
const (
	AttemptSent           = "sent"
	AttemptRejected       = "rejected"
	AttemptTransportError = "transport_error"
	AttemptSkipped        = "skipped"
)

// DeliveryMetrics exposes counters/histograms for the provider fallback chain.
type DeliveryMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	m := &DeliveryMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ambutrack",
			Subsystem: "notify",
			Name:      "provider_attempts_total",
			Help:      "Provider attempts by result (sent, rejected, transport_error, skipped)",
		}, []string{"provider", "result"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ambutrack",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Delivery outcomes returned to callers",
		}, []string{"via", "ok"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ambutrack",
			Subsystem: "notify",
			Name:      "provider_latency_seconds",
			Help:      "Latency of outbound provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.outcomesTotal, m.providerLatency)
	return m
}

func (m *DeliveryMetrics) ObserveAttempt(provider, result string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(provider, result).Inc()
}

func (m *DeliveryMetrics) ObserveOutcome(via string, ok bool) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(via, strconv.FormatBool(ok)).Inc()
}

func (m *DeliveryMetrics) ObserveLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(provider).Observe(seconds)
}
