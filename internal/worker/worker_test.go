package worker

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnsim/internal/logger"
	"txnsim/internal/transaction"
)

func noSleep(time.Duration) {}

func quietLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logger.New(buf, logger.LevelInfo)
	l.SetTimestamps(false)
	return l, buf
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []Range
	finished  []Range
	processed map[int][]int // worker -> transaction ids in order
	completed int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{processed: make(map[int][]int)}
}

func (o *recordingObserver) WorkerStarted(r Range) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, r)
}

func (o *recordingObserver) TransactionStarted(worker int, tx transaction.Transaction) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed[worker] = append(o.processed[worker], tx.ID)
}

func (o *recordingObserver) TransactionCompleted(_ int, tx transaction.Transaction, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if tx.Processed {
		o.completed++
	}
}

func (o *recordingObserver) WorkerFinished(r Range) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, r)
}

func TestNewPool(t *testing.T) {
	pool := NewPool(4)
	assert.Equal(t, 4, pool.NumWorkers())

	ranges, err := pool.Ranges(20)
	require.NoError(t, err)
	assert.Len(t, ranges, 4)
}

func TestPoolRunProcessesEveryTransactionOnce(t *testing.T) {
	log, _ := quietLogger()
	obs := newRecordingObserver()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 4, Logger: log, Observer: obs})

	batch := transaction.Generate(22, transaction.NewSource(3))
	sim := transaction.NewSimulator(1).WithSleeper(noSleep)

	require.NoError(t, pool.Run(batch, sim))

	assert.Zero(t, batch.Pending())
	for _, tx := range batch.Transactions() {
		assert.True(t, tx.Processed)
		assert.NotZero(t, tx.Result, "transaction %d", tx.ID)
		assert.Equal(t, transaction.Compute(tx.Kind, tx.ID), tx.Result)
	}

	assert.Equal(t, 22, obs.completed)
	assert.Len(t, obs.started, 4)
	assert.Len(t, obs.finished, 4)
}

func TestPoolRunAscendingWithinWorker(t *testing.T) {
	log, _ := quietLogger()
	obs := newRecordingObserver()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 3, Logger: log, Observer: obs})

	batch := transaction.Generate(10, transaction.NewSource(5))
	require.NoError(t, pool.Run(batch, transaction.NewSimulator(1).WithSleeper(noSleep)))

	assert.Equal(t, []int{1, 2, 3}, obs.processed[1])
	assert.Equal(t, []int{4, 5, 6}, obs.processed[2])
	assert.Equal(t, []int{7, 8, 9, 10}, obs.processed[3])
}

func TestPoolRunMoreWorkersThanTransactions(t *testing.T) {
	log, buf := quietLogger()
	obs := newRecordingObserver()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 4, Logger: log, Observer: obs})

	batch := transaction.Generate(3, transaction.NewSource(9))
	require.NoError(t, pool.Run(batch, transaction.NewSimulator(1).WithSleeper(noSleep)))

	assert.Zero(t, batch.Pending())
	assert.Len(t, obs.finished, 4)
	assert.Equal(t, 3, strings.Count(buf.String(), "no transactions assigned"))
}

func TestPoolRunLogsBracketingLines(t *testing.T) {
	log, buf := quietLogger()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 1, Logger: log})

	batch := transaction.NewBatch([]transaction.Transaction{
		{ID: 7, Kind: transaction.KindFileOperation, DurationMs: 100},
	})
	require.NoError(t, pool.Run(batch, transaction.NewSimulator(1).WithSleeper(noSleep)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[INFO] [worker-1] Started - processing transactions 0 to 0",
		"[INFO] [worker-1] Processing transaction 7 (kind: FileOperation, duration: 100 ms)",
		"[INFO] [worker-1] Completed transaction 7 - result: 700.00",
		"[INFO] [worker-1] Finished",
	}, lines)
}

func TestPoolRunLaunchFailure(t *testing.T) {
	log, _ := quietLogger()
	exhausted := errors.New("resource temporarily unavailable")

	var launched atomic.Int32
	launcher := LauncherFunc(func(fn func()) error {
		if launched.Load() == 2 {
			return exhausted
		}
		launched.Add(1)
		go fn()
		return nil
	})

	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 4, Logger: log, Launcher: launcher})
	batch := transaction.Generate(20, transaction.NewSource(11))

	err := pool.Run(batch, transaction.NewSimulator(1).WithSleeper(noSleep))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLaunch)
	assert.ErrorIs(t, err, exhausted)
	assert.Contains(t, err.Error(), "worker 3")

	// workers 1 and 2 ran to completion before Run returned
	assert.Equal(t, 10, batch.Pending())
	for i := range 10 {
		assert.True(t, batch.At(i).Processed)
	}
}

func TestPoolRunInvalidWorkerCount(t *testing.T) {
	pool := NewPool(0)
	err := pool.Run(transaction.Generate(5, transaction.NewSource(1)), transaction.NewSimulator(1))
	assert.ErrorIs(t, err, ErrInvalidPartition)
}

func TestPoolRunRangesRejectsOverlap(t *testing.T) {
	log, _ := quietLogger()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 2, Logger: log})
	batch := transaction.Generate(10, transaction.NewSource(1))

	err := pool.RunRanges(batch, transaction.NewSimulator(1).WithSleeper(noSleep), []Range{
		{Worker: 1, Start: 0, End: 6},
		{Worker: 2, Start: 5, End: 10},
	})

	assert.ErrorIs(t, err, ErrInvalidPartition)
	assert.Equal(t, 10, batch.Pending())
}

func TestPoolRunIsParallel(t *testing.T) {
	log, _ := quietLogger()
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 4, Logger: log})

	items := make([]transaction.Transaction, 8)
	for i := range items {
		items[i] = transaction.Transaction{ID: i + 1, Kind: transaction.KindDatabaseQuery, DurationMs: 100}
	}
	batch := transaction.NewBatch(items)
	sim := transaction.NewSimulator(0.5) // 50ms each

	start := time.Now()
	require.NoError(t, pool.Run(batch, sim))
	elapsed := time.Since(start)

	// each worker sleeps 2 x 50ms; sequential would be 400ms
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
}
