package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics
)

// ModuleMetrics returns the lazily-initialised metrics registry used to record
// ledger call activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "module",
				Name:      "requests_total",
				Help:      "Total ledger calls segmented by module, method and outcome.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "module",
				Name:      "errors_total",
				Help:      "Total failed ledger calls segmented by module, method and error code.",
			}, []string{"module", "method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ledger",
				Subsystem: "module",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for ledger calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
		)
	})
	return moduleRegistry
}

// Observe records a completed call. An empty code marks success.
func (m *moduleMetrics) Observe(module, method, code string, duration time.Duration) {
	if m == nil {
		return
	}
	module = labelOrUnknown(module)
	method = labelOrUnknown(method)
	outcome := "success"
	if code != "" {
		outcome = "error"
		m.errors.WithLabelValues(module, method, code).Inc()
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

func labelOrUnknown(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
