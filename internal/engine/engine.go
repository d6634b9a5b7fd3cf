package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"txnsim/internal/events"
	"txnsim/internal/logger"
	"txnsim/internal/metrics"
	"txnsim/internal/transaction"
	"txnsim/internal/worker"
)

var (
	// ErrInvalidConfig は設定値が不正な場合のエラー
	ErrInvalidConfig = errors.New("invalid engine config")
	// ErrAlreadyRunning は実行中に Run が呼ばれた場合のエラー
	ErrAlreadyRunning = errors.New("batch run is already in progress")
)

const (
	DefaultTransactions = 20
	DefaultWorkers      = 4

	// 1回の実行で受け付ける上限
	MaxTransactions = 100000
	MaxWorkers      = 1024
	MaxLatencyScale = 100.0
)

// Config はバッチ実行の設定
type Config struct {
	Name         string  // 実行名
	Description  string  // 説明
	Transactions int     // バッチサイズ N
	Workers      int     // ワーカー数 M
	Seed         int64   // 乱数シード（0で現在時刻）
	LatencyScale float64 // 待機時間の倍率（0で1.0）

	Logger    *logger.Logger     // 出力シンク（nilでlogger.Default）
	Launcher  worker.Launcher    // ワーカー起動方法（nilでゴルーチン）
	Collector *metrics.Collector // Prometheus（任意）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:         "default",
		Description:  "20 transactions across 4 workers",
		Transactions: DefaultTransactions,
		Workers:      DefaultWorkers,
		LatencyScale: 1.0,
	}
}

// Validate は設定を検証する
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be at most %d, got %d", ErrInvalidConfig, MaxWorkers, c.Workers)
	}
	if c.Transactions < 0 {
		return fmt.Errorf("%w: transactions must be non-negative, got %d", ErrInvalidConfig, c.Transactions)
	}
	if c.Transactions > MaxTransactions {
		return fmt.Errorf("%w: transactions must be at most %d, got %d", ErrInvalidConfig, MaxTransactions, c.Transactions)
	}
	if math.IsNaN(c.LatencyScale) || c.LatencyScale < 0 || c.LatencyScale > MaxLatencyScale {
		return fmt.Errorf("%w: latency scale must be within [0, %v], got %v", ErrInvalidConfig, MaxLatencyScale, c.LatencyScale)
	}
	return nil
}

// Result はバッチ実行結果
type Result struct {
	RunID        string                    `json:"run_id"`
	Name         string                    `json:"name"`
	Seed         int64                     `json:"seed"`
	Workers      int                       `json:"workers"`
	LatencyScale float64                   `json:"latency_scale"`
	StartTime    time.Time                 `json:"start_time"`
	EndTime      time.Time                 `json:"end_time"`
	Elapsed      time.Duration             `json:"elapsed_ns"`
	Ranges       []worker.Range            `json:"ranges"`
	Transactions []transaction.Transaction `json:"transactions"`
	Metrics      metrics.Snapshot          `json:"metrics"`
}

// ElapsedSeconds は所要時間を秒で返す
func (r *Result) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// ElapsedMilliseconds は所要時間をミリ秒で返す
func (r *Result) ElapsedMilliseconds() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

func (r *Result) latency(tx transaction.Transaction) time.Duration {
	return transaction.NewSimulator(r.LatencyScale).Latency(tx)
}

// SequentialDuration は全トランザクションの待機時間の合計を返す
// 逐次実行した場合の下限にあたる
func (r *Result) SequentialDuration() time.Duration {
	var total time.Duration
	for _, tx := range r.Transactions {
		total += r.latency(tx)
	}
	return total
}

// CriticalPath はワーカーごとの待機時間合計の最大値を返す
// 並列実行の所要時間はこれを下回らない
func (r *Result) CriticalPath() time.Duration {
	var longest time.Duration
	for _, rg := range r.Ranges {
		var sum time.Duration
		for i := rg.Start; i < rg.End; i++ {
			sum += r.latency(r.Transactions[i])
		}
		longest = max(longest, sum)
	}
	return longest
}

// Speedup は逐次実行に対する高速化率を返す
func (r *Result) Speedup() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.SequentialDuration()) / float64(r.Elapsed)
}

// Engine はバッチ実行エンジン
type Engine struct {
	config   Config
	eventBus events.Publisher

	mu      sync.RWMutex
	running bool
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// SetEventBus はイベントの送信先を設定する
func (e *Engine) SetEventBus(bus events.Publisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventBus = bus
}

// Config は設定を返す
func (e *Engine) Config() Config {
	return e.config
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Run はバッチを生成し、全ワーカーの完了まで並列処理する
//
// 生成は逐次、処理は並列、集計は全ワーカーの合流後に逐次で行う。
// タイムアウトやキャンセルはない。
func (e *Engine) Run() (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	e.running = true
	bus := e.eventBus
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	cfg := e.config
	log := cfg.Logger
	if log == nil {
		log = logger.Default
	}
	scale := cfg.LatencyScale
	if scale == 0 {
		scale = 1.0
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.NewString()

	log.Info("", "Initializing %d transactions with %d workers (run %s, seed %d)",
		cfg.Transactions, cfg.Workers, runID, seed)

	// 生成は並列フェーズの前に完了させる
	batch := transaction.Generate(cfg.Transactions, transaction.NewSource(seed))
	_, _ = fmt.Fprintln(log, batch.Listing())

	ranges, err := worker.Partition(batch.Len(), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m := metrics.NewWithConfig(metrics.Config{Collector: cfg.Collector})
	obs := &runObserver{runID: runID, bus: bus, metrics: m}
	pool := worker.NewPoolWithConfig(worker.PoolConfig{
		NumWorkers: cfg.Workers,
		Launcher:   cfg.Launcher,
		Logger:     log,
		Observer:   obs,
	})
	sim := transaction.NewSimulator(scale)

	obs.publish(events.NewRunStartedEvent(runID, batch.Len(), cfg.Workers))

	start := time.Now()
	err = pool.RunRanges(batch, sim, ranges)
	end := time.Now()

	if err != nil {
		m.RecordLaunchFailure()
		obs.publish(events.NewRunFailedEvent(runID, err))
		return nil, fmt.Errorf("run %s aborted: %w", runID, err)
	}

	elapsed := end.Sub(start)
	m.RecordRun(elapsed, batch.Len())
	obs.publish(events.NewRunCompletedEvent(runID, elapsed))

	return &Result{
		RunID:        runID,
		Name:         cfg.Name,
		Seed:         seed,
		Workers:      cfg.Workers,
		LatencyScale: scale,
		StartTime:    start,
		EndTime:      end,
		Elapsed:      elapsed,
		Ranges:       ranges,
		Transactions: batch.Transactions(),
		Metrics:      m.Snapshot(),
	}, nil
}

// runObserver はワーカーの進捗をメトリクスとイベントに流す
type runObserver struct {
	runID   string
	bus     events.Publisher
	metrics *metrics.Metrics
}

func (o *runObserver) publish(event events.Event) {
	if o.bus != nil {
		o.bus.Publish(event)
	}
}

func (o *runObserver) WorkerStarted(r worker.Range) {
	o.publish(events.NewWorkerStartedEvent(o.runID, r.Worker, r.Start, r.End))
}

func (o *runObserver) TransactionStarted(w int, tx transaction.Transaction) {
	o.publish(events.NewTransactionStartedEvent(o.runID, w, tx.ID, tx.Kind.String(), tx.DurationMs))
}

func (o *runObserver) TransactionCompleted(w int, tx transaction.Transaction, elapsed time.Duration) {
	o.metrics.RecordTransaction(w, tx.Kind, elapsed)
	o.publish(events.NewTransactionCompletedEvent(o.runID, w, tx.ID, tx.Kind.String(), tx.Result, elapsed))
}

func (o *runObserver) WorkerFinished(r worker.Range) {
	o.publish(events.NewWorkerFinishedEvent(o.runID, r.Worker))
}

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `
================================================================================
                         FINAL RESULTS: %s
================================================================================

RUN
---
  Run ID:           %s
  Seed:             %d
  Transactions:     %d
  Workers:          %d
  Latency Scale:    %.2f

TIME MEASUREMENT
----------------
  Total time:       %.3f seconds
  Total time:       %.0f milliseconds
  Sequential sum:   %v
  Critical path:    %v
  Speedup:          %.2fx

WORKER RANGES
-------------
`,
		r.Name,
		r.RunID,
		r.Seed,
		len(r.Transactions),
		r.Workers,
		r.LatencyScale,
		r.ElapsedSeconds(),
		r.ElapsedMilliseconds(),
		r.SequentialDuration().Round(time.Millisecond),
		r.CriticalPath().Round(time.Millisecond),
		r.Speedup(),
	)

	for _, rg := range r.Ranges {
		fmt.Fprintf(&sb, "  %s (%d transactions)\n", rg, rg.Len())
	}

	sb.WriteString("\nTRANSACTION SUMMARY\n-------------------\n")
	for _, tx := range r.Transactions {
		fmt.Fprintf(&sb, "  Transaction %d: %.2f\n", tx.ID, tx.Result)
	}

	sb.WriteString("\nParallel processing completed successfully!\n")
	sb.WriteString("================================================================================")

	return sb.String()
}
