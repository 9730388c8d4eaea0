// control/control.go
// Author: momentics <momentics@gmail.com>
//
// Control facade combining metrics and debug probes.

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-tcp/api"
)

type Control struct {
	metrics *Metrics
	debug   *DebugProbes
	reg     *prometheus.Registry
}

// New builds a Control on reg. A nil reg gets a private registry, which keeps
// several servers in one process from colliding on metric names.
func New(reg *prometheus.Registry) *Control {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Control{
		metrics: NewMetrics(reg),
		debug:   NewDebugProbes(),
		reg:     reg,
	}
	RegisterPlatformProbes(c.debug)
	return c
}

func (c *Control) Metrics() *Metrics {
	return c.metrics
}

// Registry exposes the registry for scraping.
func (c *Control) Registry() *prometheus.Registry {
	return c.reg
}

func (c *Control) Stats() map[string]any {
	combined := c.metrics.GetSnapshot()
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *Control) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

var _ api.Control = (*Control)(nil)
