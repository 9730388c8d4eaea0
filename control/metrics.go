// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the dispatch core.

package control

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hioload_tcp"

// Event kinds and close reasons used as label values.
const (
	EventNew   = "new"
	EventRead  = "read"
	EventError = "error"
	EventClose = "close"

	ReasonPeer      = "peer"
	ReasonReadError = "read_error"
	ReasonHandler   = "handler"
	ReasonFailure   = "failure"
)

// Metrics holds the server's collectors.
type Metrics struct {
	Accepted       prometheus.Counter
	AcceptFailures prometheus.Counter
	Events         *prometheus.CounterVec // by kind
	Closed         *prometheus.CounterVec // by reason

	reg *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accepted_total",
			Help:      "Connections accepted by the event loop.",
		}),
		AcceptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_failures_total",
			Help:      "Accept or registration failures, each skipped by the loop.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Work items handed to the worker pool, by kind.",
		}, []string{"kind"}),
		Closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closed_total",
			Help:      "Connections closed by the server, by reason.",
		}, []string{"reason"}),
		reg: reg,
	}
	reg.MustRegister(m.Accepted, m.AcceptFailures, m.Events, m.Closed)
	return m
}

// WatchBacklog exports fn as the worker queue depth gauge. Only the first
// call on a registry takes effect.
func (m *Metrics) WatchBacklog(fn func() int) {
	_ = m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_backlog",
		Help:      "Work items queued and not yet picked up by a worker.",
	}, func() float64 { return float64(fn()) }))
}

// GetSnapshot flattens every gathered sample into name{labels} -> value.
func (m *Metrics) GetSnapshot() map[string]any {
	out := make(map[string]any)
	families, err := m.reg.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			if labels := metric.GetLabel(); len(labels) > 0 {
				parts := make([]string, 0, len(labels))
				for _, l := range labels {
					parts = append(parts, l.GetName()+"="+l.GetValue())
				}
				sort.Strings(parts)
				key += "{" + strings.Join(parts, ",") + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out
}
