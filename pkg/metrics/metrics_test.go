package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("join", "ok")
	m.ObserveOperation("join", "ok")
	m.ObserveOperation("start", "NotEnoughPlayers")
	m.ObservePersist(time.Millisecond)
	m.SetActiveActors(3)
	m.IncBroadcastDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("join", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("start", "NotEnoughPlayers")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeActors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcastDropped))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("join", "ok")
		m.ObservePersist(time.Second)
		m.SetActiveActors(1)
		m.IncBroadcastDropped()
		m.SetSubscribers(1)
	})
}
