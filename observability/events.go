package observability

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"assetledger/core/events"
	"assetledger/observability/logging"
)

// principalAttributes are event attributes holding a principal. They are
// masked before logging.
var principalAttributes = map[string]struct{}{
	"owner":   {},
	"from":    {},
	"to":      {},
	"creator": {},
	"host":    {},
}

type eventMetrics struct {
	emitted *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured ledger events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "events",
				Name:      "total",
				Help:      "Count of emitted ledger events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.emitted)
	})
	return eventRegistry
}

// RecordEvent increments the counter for the supplied event type.
func (m *eventMetrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(labelOrUnknown(eventType)).Inc()
}

// LogEmitter logs every event it receives and counts it by type.
type LogEmitter struct {
	Logger  *slog.Logger
	Metrics *eventMetrics
}

// NewLogEmitter returns an emitter writing to logger and the shared event
// metrics registry.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{Logger: logger, Metrics: Events()}
}

// Emit implements events.Emitter.
func (l *LogEmitter) Emit(evt events.Event) {
	if l == nil || evt == nil {
		return
	}
	l.Metrics.RecordEvent(evt.EventType())
	if l.Logger == nil {
		return
	}
	attrs := []any{slog.String("type", evt.EventType())}
	if structured, ok := evt.(events.Structured); ok {
		if payload := structured.Event(); payload != nil {
			group := make([]any, 0, len(payload.Attributes))
			for key, value := range payload.Attributes {
				if _, ok := principalAttributes[key]; ok {
					group = append(group, logging.MaskPrincipal(key, value))
					continue
				}
				group = append(group, slog.String(key, value))
			}
			attrs = append(attrs, slog.Group("attributes", group...))
		}
	}
	l.Logger.Info("ledger event", attrs...)
}
