package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"txnsim/internal/transaction"
)

// Collector はPrometheusのメトリクス群
type Collector struct {
	TransactionsProcessed *prometheus.CounterVec
	TransactionLatency    *prometheus.HistogramVec
	WorkerTransactions    *prometheus.CounterVec

	RunsTotal      prometheus.Counter
	RunDuration    prometheus.Histogram
	BatchSize      prometheus.Gauge
	LaunchFailures prometheus.Counter
}

// NewCollector は namespace 配下のメトリクスを reg に登録して返す
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		TransactionsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_processed_total",
			Help:      "Total number of simulated transactions processed, by kind",
		}, []string{"kind"}),
		TransactionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_latency_seconds",
			Help:      "Simulated transaction processing latency in seconds, by kind",
			Buckets:   []float64{.01, .025, .05, .1, .2, .3, .4, .5, .75, 1},
		}, []string{"kind"}),
		WorkerTransactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_transactions_total",
			Help:      "Total number of transactions processed, by worker",
		}, []string{"worker"}),

		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of completed batch runs",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of a parallel batch run in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2, 3, 5, 10, 30},
		}),
		BatchSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of transactions in the most recent batch",
		}),
		LaunchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_launch_failures_total",
			Help:      "Total number of worker launch failures",
		}),
	}
}

func (c *Collector) observeTransaction(worker int, kind transaction.Kind, latency time.Duration) {
	c.TransactionsProcessed.WithLabelValues(kind.String()).Inc()
	c.TransactionLatency.WithLabelValues(kind.String()).Observe(latency.Seconds())
	c.WorkerTransactions.WithLabelValues(strconv.Itoa(worker)).Inc()
}

func (c *Collector) observeRun(elapsed time.Duration, transactions int) {
	c.RunsTotal.Inc()
	c.RunDuration.Observe(elapsed.Seconds())
	c.BatchSize.Set(float64(transactions))
}
