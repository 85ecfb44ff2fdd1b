package mgmt

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Collector exports a bean's counts and settings at scrape time.
type Collector struct {
	bean     track.ManagedBean
	snap     track.Snapshotter
	created  *prom.Desc
	enabled  *prom.Desc
	interval *prom.Desc
}

// NewCollector builds a collector for the bean registered under name.
func NewCollector(name string, bean track.ManagedBean, snap track.Snapshotter) *Collector {
	labels := prom.Labels{"bean": name}
	return &Collector{
		bean: bean,
		snap: snap,
		created: prom.NewDesc("weaktrack_weak_pointers_total",
			"Weak pointers created, by referent type", []string{"type"}, labels),
		enabled: prom.NewDesc("weaktrack_tracking_enabled",
			"Whether weak pointer creations are being counted", nil, labels),
		interval: prom.NewDesc("weaktrack_stackdump_interval",
			"Records per type between stack captures", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prom.Desc) {
	ch <- c.created
	ch <- c.enabled
	ch <- c.interval
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prom.Metric) {
	for _, e := range c.snap.Snapshot() {
		ch <- prom.MustNewConstMetric(c.created, prom.CounterValue, float64(e.Count), e.Key)
	}
	enabled := 0.0
	if c.bean.IsEnabled() {
		enabled = 1
	}
	ch <- prom.MustNewConstMetric(c.enabled, prom.GaugeValue, enabled)
	ch <- prom.MustNewConstMetric(c.interval, prom.GaugeValue, float64(c.bean.StackdumpInterval()))
}
