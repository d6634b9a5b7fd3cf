// Package worker runs a fixed number of workers over statically partitioned
// ranges of a transaction batch.
//
// Partition splits [0, n) into m contiguous ranges: each worker gets n/m
// indices and the last worker absorbs the remainder. Ranges never overlap,
// so every Result slot in the batch has exactly one writer and workers need
// no lock for the batch itself. The only shared, lock-guarded resource is
// the logger used for progress lines.
//
// # Basic Usage
//
//	pool := worker.NewPool(4)
//	batch := transaction.Generate(20, transaction.NewSource(0))
//	if err := pool.Run(batch, transaction.NewSimulator(1.0)); err != nil {
//	    // errors.Is(err, worker.ErrLaunch)
//	}
//
// # Configuration
//
// Use NewPoolWithConfig to supply a Launcher, a Logger or an Observer:
//
//	pool := worker.NewPoolWithConfig(worker.PoolConfig{
//	    NumWorkers: 8,
//	    Launcher:   worker.GoLauncher,
//	    Logger:     logger.New(os.Stdout, logger.LevelInfo),
//	    Observer:   myObserver,
//	})
//
// # Join
//
// Run launches every worker once and blocks until all of them return. There
// is no timeout and no cancellation; a failed launch stops further launches,
// waits for the workers already running and returns an error wrapping
// ErrLaunch.
package worker
