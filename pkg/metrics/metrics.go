package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported by the server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	operations       *prometheus.CounterVec
	persistDuration  prometheus.Histogram
	activeActors     prometheus.Gauge
	broadcastDropped prometheus.Counter
	subscribers      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabletop",
			Name:      "operations_total",
			Help:      "Game operations handled, by action and result code.",
		}, []string{"action", "result"}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tabletop",
			Name:      "persist_duration_seconds",
			Help:      "Time spent persisting a game state.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		activeActors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tabletop",
			Name:      "active_actors",
			Help:      "Game actors currently resident in memory.",
		}),
		broadcastDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabletop",
			Name:      "broadcast_dropped_total",
			Help:      "State change notifications dropped because the queue was full.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tabletop",
			Name:      "subscribers",
			Help:      "Open realtime subscriptions.",
		}),
	}
	reg.MustRegister(m.operations, m.persistDuration, m.activeActors, m.broadcastDropped, m.subscribers)
	return m
}

func (m *Metrics) ObserveOperation(action string, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ObservePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(d.Seconds())
}

func (m *Metrics) SetActiveActors(n int) {
	if m == nil {
		return
	}
	m.activeActors.Set(float64(n))
}

func (m *Metrics) IncBroadcastDropped() {
	if m == nil {
		return
	}
	m.broadcastDropped.Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
