package control_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-tcp/control"
)

func TestMetrics_Counters(t *testing.T) {
	c := control.New(nil)
	m := c.Metrics()

	m.Accepted.Inc()
	m.Accepted.Inc()
	m.Events.WithLabelValues(control.EventRead).Add(3)
	m.Closed.WithLabelValues(control.ReasonPeer).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Accepted))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Events.WithLabelValues(control.EventRead)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Closed.WithLabelValues(control.ReasonPeer)))
}

func TestControl_StatsSnapshot(t *testing.T) {
	c := control.New(prometheus.NewRegistry())
	backlog := 7
	c.Metrics().WatchBacklog(func() int { return backlog })
	c.Metrics().WatchBacklog(func() int { return -1 })
	c.Metrics().Events.WithLabelValues(control.EventNew).Inc()
	c.RegisterDebugProbe("answer", func() any { return 42 })
	c.RegisterDebugProbe("broken", func() any { panic("probe") })

	stats := c.Stats()
	assert.Equal(t, 7.0, stats["hioload_tcp_pool_backlog"])
	assert.Equal(t, 1.0, stats["hioload_tcp_events_total{kind=new}"])
	assert.Equal(t, 0.0, stats["hioload_tcp_accepted_total"])
	assert.Equal(t, 42, stats["debug.answer"])
	assert.Contains(t, stats, "debug.broken")
	assert.Nil(t, stats["debug.broken"])
	assert.Contains(t, stats, "debug.platform.cpus")
}

func TestControl_SharedRegistryRejectsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = control.New(reg)
	require.Panics(t, func() { control.New(reg) })
}
