// Package metrics exports allocator statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/storagekit/alloc"
)

const subsystem = "alloc"

// StatsSource is implemented by alloc.Tracker.
type StatsSource interface {
	Name() string
	Stats() alloc.TrackerStats
}

// Collector is a prometheus.Collector reading a tracker's counters at
// scrape time. Every series carries an "allocator" label with the tracker
// name.
type Collector struct {
	src StatsSource

	allocations   *prometheus.Desc
	frees         *prometheus.Desc
	reallocations *prometheus.Desc
	fallbacks     *prometheus.Desc
	rejected      *prometheus.Desc
	liveBlocks    *prometheus.Desc
	liveBytes     *prometheus.Desc
	peakBytes     *prometheus.Desc
	budgetBytes   *prometheus.Desc
}

// NewCollector returns a collector over src. Register it with a
// prometheus.Registerer.
func NewCollector(src StatsSource, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, name),
			help,
			nil,
			prometheus.Labels{"allocator": src.Name()},
		)
	}
	return &Collector{
		src:           src,
		allocations:   desc("allocations_total", "Blocks allocated."),
		frees:         desc("frees_total", "Blocks freed."),
		reallocations: desc("reallocations_total", "Blocks resized in place."),
		fallbacks:     desc("reallocation_fallbacks_total", "In-place resizes refused by the allocator."),
		rejected:      desc("rejected_total", "Requests refused by the byte budget."),
		liveBlocks:    desc("live_blocks", "Blocks currently allocated."),
		liveBytes:     desc("live_bytes", "Bytes currently allocated."),
		peakBytes:     desc("peak_bytes", "Highest live byte count observed."),
		budgetBytes:   desc("budget_bytes", "Byte budget, 0 if unlimited."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocations
	ch <- c.frees
	ch <- c.reallocations
	ch <- c.fallbacks
	ch <- c.rejected
	ch <- c.liveBlocks
	ch <- c.liveBytes
	ch <- c.peakBytes
	ch <- c.budgetBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter(c.allocations, s.Allocations)
	counter(c.frees, s.Frees)
	counter(c.reallocations, s.Reallocations)
	counter(c.fallbacks, s.Fallbacks)
	counter(c.rejected, s.Rejected)
	gauge(c.liveBlocks, s.LiveBlocks)
	gauge(c.liveBytes, s.LiveBytes)
	gauge(c.peakBytes, s.PeakBytes)
	gauge(c.budgetBytes, s.BudgetBytes)
}
