// Package metrics collects per-run transaction statistics.
//
// Metrics counts processed transactions by kind and by worker and samples
// their latency. It is safe for concurrent use by all workers of a run.
// When a Collector is configured, every observation is also forwarded to
// Prometheus.
//
// # Basic Usage
//
//	m := metrics.New()
//	m.RecordTransaction(1, transaction.KindCalculation, 320*time.Millisecond)
//	m.RecordRun(elapsed, 20)
//	snap := m.Snapshot()
//
// # Prometheus
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector("txnsim", reg)
//	m := metrics.NewWithConfig(metrics.Config{Collector: c})
package metrics
