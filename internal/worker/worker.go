package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"txnsim/internal/logger"
	"txnsim/internal/transaction"
)

// ErrLaunch はワーカーの起動に失敗した場合のエラー
var ErrLaunch = errors.New("failed to launch worker")

// Launcher はワーカー関数を並行実行として起動する
type Launcher interface {
	Launch(fn func()) error
}

// LauncherFunc は関数を Launcher として扱うアダプタ
type LauncherFunc func(fn func()) error

// Launch implements Launcher.
func (f LauncherFunc) Launch(fn func()) error {
	return f(fn)
}

// GoLauncher はゴルーチンでワーカーを起動する
var GoLauncher Launcher = LauncherFunc(func(fn func()) error {
	go fn()
	return nil
})

// Observer はワーカーの進捗通知を受け取る
// 複数のワーカーから並行して呼ばれる
type Observer interface {
	WorkerStarted(r Range)
	TransactionStarted(worker int, tx transaction.Transaction)
	TransactionCompleted(worker int, tx transaction.Transaction, elapsed time.Duration)
	WorkerFinished(r Range)
}

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers int            // ワーカー数
	Launcher   Launcher       // nilでGoLauncher
	Logger     *logger.Logger // nilでlogger.Default
	Observer   Observer       // 任意
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 4,
		Launcher:   GoLauncher,
		Logger:     logger.Default,
	}
}

// Pool は固定数のワーカーでバッチを静的に分割して処理する
type Pool struct {
	numWorkers int
	launcher   Launcher
	log        *logger.Logger
	observer   Observer
}

// NewPool は新しいワーカープールを作成する
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	launcher := config.Launcher
	if launcher == nil {
		launcher = GoLauncher
	}
	log := config.Logger
	if log == nil {
		log = logger.Default
	}
	return &Pool{
		numWorkers: config.NumWorkers,
		launcher:   launcher,
		log:        log,
		observer:   config.Observer,
	}
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Ranges はバッチサイズ n に対する各ワーカーの担当範囲を返す
func (p *Pool) Ranges(n int) ([]Range, error) {
	return Partition(n, p.numWorkers)
}

// Run は全ワーカーを起動し、全員の完了を待つ
//
// 起動に失敗した場合はそれ以降のワーカーを起動せず、起動済みのワーカーの
// 完了を待ってから ErrLaunch をラップしたエラーを返す。
func (p *Pool) Run(batch *transaction.Batch, sim *transaction.Simulator) error {
	ranges, err := p.Ranges(batch.Len())
	if err != nil {
		return err
	}
	return p.RunRanges(batch, sim, ranges)
}

// RunRanges は計算済みの担当範囲でワーカーを起動し、全員の完了を待つ
func (p *Pool) RunRanges(batch *transaction.Batch, sim *transaction.Simulator, ranges []Range) error {
	if err := CheckPartition(ranges, batch.Len()); err != nil {
		return err
	}

	var wg sync.WaitGroup
	var launchErr error

	for _, r := range ranges {
		wg.Add(1)
		err := p.launcher.Launch(func() {
			defer wg.Done()
			p.work(batch, sim, r)
		})
		if err != nil {
			wg.Done()
			launchErr = fmt.Errorf("%w %d: %w", ErrLaunch, r.Worker, err)
			p.log.Error("", "Failed to launch worker %d: %v", r.Worker, err)
			break
		}
	}

	wg.Wait()
	return launchErr
}

// work は1つのワーカーの処理本体
// 担当範囲を昇順に処理し、範囲外には触れない
func (p *Pool) work(batch *transaction.Batch, sim *transaction.Simulator, r Range) {
	tag := fmt.Sprintf("worker-%d", r.Worker)

	if r.Empty() {
		p.log.Info(tag, "Started - no transactions assigned")
	} else {
		p.log.Info(tag, "Started - processing transactions %d to %d", r.Start, r.End-1)
	}
	if p.observer != nil {
		p.observer.WorkerStarted(r)
	}

	for i := r.Start; i < r.End; i++ {
		tx := batch.At(i)

		p.log.Info(tag, "Processing transaction %d (kind: %s, duration: %d ms)",
			tx.ID, tx.Kind, tx.DurationMs)
		if p.observer != nil {
			p.observer.TransactionStarted(r.Worker, tx)
		}

		p.log.Debug(tag, "%s for transaction %d", tx.Kind.Activity(), tx.ID)
		start := time.Now()
		result := sim.Run(tx)
		elapsed := time.Since(start)

		batch.SetResult(i, result)
		tx = batch.At(i)

		p.log.Info(tag, "Completed transaction %d - result: %.2f", tx.ID, tx.Result)
		if p.observer != nil {
			p.observer.TransactionCompleted(r.Worker, tx, elapsed)
		}
	}

	p.log.Info(tag, "Finished")
	if p.observer != nil {
		p.observer.WorkerFinished(r)
	}
}
