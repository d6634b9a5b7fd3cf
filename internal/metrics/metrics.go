package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"txnsim/internal/transaction"
)

// Config はメトリクスの設定
type Config struct {
	MaxLatencySamples int        // P99計算用のサンプル上限（0でデフォルト）
	Collector         *Collector // Prometheusへの転送先（任意）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		MaxLatencySamples: 1000,
	}
}

// Metrics は1回のバッチ実行のトランザクションメトリクスを収集する
type Metrics struct {
	totalTransactions atomic.Uint64
	totalLatencyNs    atomic.Uint64
	byKind            [3]atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	elapsed           time.Duration
	perWorker         map[int]uint64
	latencies         []time.Duration
	maxLatencySamples int

	collector *Collector
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	samples := config.MaxLatencySamples
	if samples <= 0 {
		samples = DefaultConfig().MaxLatencySamples
	}
	return &Metrics{
		startTime:         time.Now(),
		perWorker:         make(map[int]uint64),
		latencies:         make([]time.Duration, 0, samples),
		maxLatencySamples: samples,
		collector:         config.Collector,
	}
}

// RecordTransaction は完了したトランザクションを記録する
func (m *Metrics) RecordTransaction(worker int, kind transaction.Kind, latency time.Duration) {
	m.totalTransactions.Add(1)
	m.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	if kind.Valid() {
		m.byKind[kind].Add(1)
	}

	m.mu.Lock()
	m.perWorker[worker]++
	if len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, latency)
	}
	m.mu.Unlock()

	if m.collector != nil {
		m.collector.observeTransaction(worker, kind, latency)
	}
}

// RecordRun はバッチ全体の所要時間を記録する
func (m *Metrics) RecordRun(elapsed time.Duration, transactions int) {
	m.mu.Lock()
	m.elapsed = elapsed
	m.mu.Unlock()

	if m.collector != nil {
		m.collector.observeRun(elapsed, transactions)
	}
}

// RecordLaunchFailure はワーカー起動失敗を記録する
func (m *Metrics) RecordLaunchFailure() {
	if m.collector != nil {
		m.collector.LaunchFailures.Inc()
	}
}

// TotalTransactions は処理済みトランザクション数を返す
func (m *Metrics) TotalTransactions() uint64 {
	return m.totalTransactions.Load()
}

// CountByKind は種別ごとの処理済み数を返す
func (m *Metrics) CountByKind(kind transaction.Kind) uint64 {
	if !kind.Valid() {
		return 0
	}
	return m.byKind[kind].Load()
}

// CountByWorker はワーカーごとの処理済み数を返す
func (m *Metrics) CountByWorker(worker int) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.perWorker[worker]
}

// AverageLatency は平均レイテンシを返す
func (m *Metrics) AverageLatency() time.Duration {
	total := m.totalTransactions.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.totalLatencyNs.Load() / total)
}

// P99Latency はP99レイテンシを返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Throughput は1秒あたりの処理件数を返す
// RecordRun 前は開始からの経過時間を使う
func (m *Metrics) Throughput() float64 {
	m.mu.RLock()
	elapsed := m.elapsed
	m.mu.RUnlock()

	if elapsed == 0 {
		elapsed = time.Since(m.startTime)
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(m.totalTransactions.Load()) / elapsed.Seconds()
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	TotalTransactions uint64            `json:"total_transactions"`
	ByKind            map[string]uint64 `json:"by_kind"`
	ByWorker          map[int]uint64    `json:"by_worker"`
	AverageLatency    time.Duration     `json:"average_latency_ns"`
	P99Latency        time.Duration     `json:"p99_latency_ns"`
	Throughput        float64           `json:"throughput"`
	Elapsed           time.Duration     `json:"elapsed_ns"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	byKind := make(map[string]uint64, 3)
	for _, k := range transaction.Kinds() {
		byKind[k.String()] = m.CountByKind(k)
	}

	m.mu.RLock()
	byWorker := make(map[int]uint64, len(m.perWorker))
	for w, n := range m.perWorker {
		byWorker[w] = n
	}
	elapsed := m.elapsed
	m.mu.RUnlock()

	if elapsed == 0 {
		elapsed = time.Since(m.startTime)
	}

	return Snapshot{
		TotalTransactions: m.TotalTransactions(),
		ByKind:            byKind,
		ByWorker:          byWorker,
		AverageLatency:    m.AverageLatency(),
		P99Latency:        m.P99Latency(),
		Throughput:        m.Throughput(),
		Elapsed:           elapsed,
	}
}
