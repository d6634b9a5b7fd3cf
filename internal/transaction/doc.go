// Package transaction defines the simulated transaction batch.
//
// A Batch is a fixed-length, index-addressable sequence of Transactions
// generated once before any parallel work starts. Each Transaction has an
// immutable id, kind and duration, and a Result slot that is written
// exactly once by the worker owning its index.
//
// # Kinds
//
//   - KindDatabaseQuery: sleeps for the duration, result = id * 3.14
//   - KindFileOperation: sleeps for the duration, result = id * 100
//   - KindCalculation: sleeps, then sums (id*i)*0.00001 for i in [0, 100000)
//
// # Basic Usage
//
//	rng := transaction.NewSource(42)
//	batch := transaction.Generate(20, rng)
//	sim := transaction.NewSimulator(1.0)
//	for i := range batch.Len() {
//	    batch.SetResult(i, sim.Run(batch.At(i)))
//	}
package transaction
