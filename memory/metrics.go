package memory

import "github.com/prometheus/client_golang/prometheus"

// StatsCollector adapts an Accounting into a Prometheus collector.
// Register it with an embedding host's registry; the bridge itself
// serves no endpoints.
type StatsCollector struct {
	acct *Accounting

	allocated     *prometheus.Desc
	peak          *prometheus.Desc
	allocations   *prometheus.Desc
	deallocations *prometheus.Desc
}

var _ prometheus.Collector = (*StatsCollector)(nil)

// NewStatsCollector creates a collector over acct.
func NewStatsCollector(acct *Accounting) *StatsCollector {
	return &StatsCollector{
		acct: acct,
		allocated: prometheus.NewDesc(
			"qxr_bridge_memory_allocated_bytes",
			"Bytes currently attributed as allocated in the bridge arena.",
			nil, nil,
		),
		peak: prometheus.NewDesc(
			"qxr_bridge_memory_peak_bytes",
			"High-water mark of allocated bytes since the last reset.",
			nil, nil,
		),
		allocations: prometheus.NewDesc(
			"qxr_bridge_memory_allocations_total",
			"Total arena allocations since the last reset.",
			nil, nil,
		),
		deallocations: prometheus.NewDesc(
			"qxr_bridge_memory_deallocations_total",
			"Total arena deallocations since the last reset.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocated
	ch <- c.peak
	ch <- c.allocations
	ch <- c.deallocations
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.acct.Stats()
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.GaugeValue, float64(stats.TotalAllocated))
	ch <- prometheus.MustNewConstMetric(c.peak, prometheus.GaugeValue, float64(stats.PeakAllocated))
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(stats.AllocationCount))
	ch <- prometheus.MustNewConstMetric(c.deallocations, prometheus.CounterValue, float64(stats.DeallocationCount))
}
