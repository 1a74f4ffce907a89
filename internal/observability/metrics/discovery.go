package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

// DiscoveryMetrics observes discovery runs, search provider calls and advisory oracle calls.
type DiscoveryMetrics struct {
	service string

	runsTotal        *prometheus.CounterVec
	runAttempts      *prometheus.HistogramVec
	runVendors       *prometheus.HistogramVec
	runDuration      *prometheus.HistogramVec
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	oracleCalls      *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

func newDiscoveryMetrics(service string, registry *prometheus.Registry) *DiscoveryMetrics {
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vf",
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Total discovery runs by stop reason.",
		},
		[]string{"service", "stop_reason"},
	)
	runAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vf",
			Subsystem: "discovery",
			Name:      "attempts",
			Help:      "Distribution of loop attempts per discovery run.",
			Buckets:   []float64{1, 2, 3, 4},
		},
		[]string{"service"},
	)
	runVendors := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vf",
			Subsystem: "discovery",
			Name:      "vendors_returned",
			Help:      "Distribution of vendors returned per discovery run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 20},
		},
		[]string{"service"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vf",
			Subsystem: "discovery",
			Name:      "duration_seconds",
			Help:      "Discovery run duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service"},
	)
	providerCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vf",
			Name:      "search_provider_calls_total",
			Help:      "Total search provider calls by status.",
		},
		[]string{"service", "provider", "status"},
	)
	providerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vf",
			Name:      "search_provider_duration_seconds",
			Help:      "Search provider call duration in seconds, including rate limiter waits.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "provider"},
	)
	oracleCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vf",
			Name:      "oracle_calls_total",
			Help:      "Total advisory oracle calls by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)

	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vf",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per outbound operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(runsTotal, runAttempts, runVendors, runDuration, providerCalls, providerDuration, oracleCalls, breakerState)

	return &DiscoveryMetrics{
		service:          service,
		runsTotal:        runsTotal,
		runAttempts:      runAttempts,
		runVendors:       runVendors,
		runDuration:      runDuration,
		providerCalls:    providerCalls,
		providerDuration: providerDuration,
		oracleCalls:      oracleCalls,
		breakerState:     breakerState,
	}
}

func (m *DiscoveryMetrics) ObserveDiscovery(result *domain.AgentResult, duration time.Duration) {
	if result == nil {
		return
	}
	stopReason := result.StopReason
	if stopReason == "" {
		stopReason = "unknown"
	}
	m.runsTotal.WithLabelValues(m.service, stopReason).Inc()
	if result.Attempts > 0 {
		m.runAttempts.WithLabelValues(m.service).Observe(float64(result.Attempts))
	}
	m.runVendors.WithLabelValues(m.service).Observe(float64(result.TotalVendors))
	m.runDuration.WithLabelValues(m.service).Observe(duration.Seconds())
}

func (m *DiscoveryMetrics) ObserveOracleCall(operation, outcome string) {
	if operation == "" {
		operation = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.oracleCalls.WithLabelValues(m.service, operation, outcome).Inc()
}

func (m *DiscoveryMetrics) ObserveProviderCall(provider, status string, duration time.Duration) {
	m.providerCalls.WithLabelValues(m.service, provider, status).Inc()
	if duration > 0 {
		m.providerDuration.WithLabelValues(m.service, provider).Observe(duration.Seconds())
	}
}

func (m *DiscoveryMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
