package transaction

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultDeterminismByKind(t *testing.T) {
	assert.InDelta(t, 21.98, Compute(KindDatabaseQuery, 7), 1e-9)
	assert.Equal(t, 700.0, Compute(KindFileOperation, 7))
	// 7 * 0.00001 * (99999 * 100000 / 2)
	assert.InDelta(t, 349996.5, Compute(KindCalculation, 7), 1e-3)
}

func TestCalculationReproducible(t *testing.T) {
	first := CalculationResult(13)
	for range 3 {
		assert.Equal(t, first, CalculationResult(13))
	}
}

func TestResultsNeverZeroForPositiveIDs(t *testing.T) {
	for _, k := range Kinds() {
		for id := 1; id <= 25; id++ {
			assert.NotZero(t, Compute(k, id), "%s id=%d", k, id)
		}
	}
}

func TestComputeUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		Compute(Kind(42), 1)
	})
}

type recordingSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *recordingSleeper) Sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slept = append(r.slept, d)
}

func TestSimulatorRun(t *testing.T) {
	rec := &recordingSleeper{}
	sim := NewSimulator(1.0).WithSleeper(rec.Sleep)

	result := sim.Run(Transaction{ID: 2, Kind: KindFileOperation, DurationMs: 300})

	assert.Equal(t, 200.0, result)
	assert.Equal(t, []time.Duration{300 * time.Millisecond}, rec.slept)
}

func TestSimulatorScale(t *testing.T) {
	rec := &recordingSleeper{}
	sim := NewSimulator(0.1).WithSleeper(rec.Sleep)

	sim.Run(Transaction{ID: 1, Kind: KindDatabaseQuery, DurationMs: 200})

	assert.Equal(t, 0.1, sim.Scale())
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, rec.slept)

	assert.Equal(t, 1.0, NewSimulator(0).Scale())
	assert.Equal(t, 1.0, NewSimulator(-2).Scale())
}

func TestSimulatorSleepsRealTime(t *testing.T) {
	sim := NewSimulator(0.1)

	start := time.Now()
	sim.Run(Transaction{ID: 1, Kind: KindCalculation, DurationMs: 200})

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSimulatorUnknownKindPanicsBeforeSleeping(t *testing.T) {
	rec := &recordingSleeper{}
	sim := NewSimulator(1).WithSleeper(rec.Sleep)

	assert.Panics(t, func() {
		sim.Run(Transaction{ID: 1, Kind: Kind(5), DurationMs: 100})
	})
	assert.Empty(t, rec.slept)
}
