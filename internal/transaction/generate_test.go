package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	batch := Generate(20, NewSource(42))

	require.Equal(t, 20, batch.Len())
	for i, tx := range batch.Transactions() {
		assert.Equal(t, i+1, tx.ID)
		assert.True(t, tx.Kind.Valid(), "transaction %d has invalid kind %d", tx.ID, tx.Kind)
		assert.GreaterOrEqual(t, tx.DurationMs, MinDurationMs)
		assert.LessOrEqual(t, tx.DurationMs, MaxDurationMs)
		assert.Zero(t, tx.Result)
		assert.False(t, tx.Processed)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := Generate(50, NewSource(7)).Transactions()
	b := Generate(50, NewSource(7)).Transactions()
	c := Generate(50, NewSource(8)).Transactions()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateCoversAllKindsAndRange(t *testing.T) {
	batch := Generate(5000, NewSource(1))

	kinds := make(map[Kind]int)
	sawMin, sawMax := false, false
	for _, tx := range batch.Transactions() {
		kinds[tx.Kind]++
		if tx.DurationMs == MinDurationMs {
			sawMin = true
		}
		if tx.DurationMs == MaxDurationMs {
			sawMax = true
		}
	}

	assert.Len(t, kinds, 3)
	for _, k := range Kinds() {
		// uniform: roughly a third each
		assert.InDelta(t, 5000/3, kinds[k], 300, k.String())
	}
	assert.True(t, sawMin, "expected minimum duration to be generated")
	assert.True(t, sawMax, "expected maximum duration to be generated")
}

func TestGenerateEmpty(t *testing.T) {
	assert.Equal(t, 0, Generate(0, NewSource(1)).Len())
	assert.Equal(t, 0, Generate(-3, NewSource(1)).Len())
}

func TestNewSourceTimeSeeded(t *testing.T) {
	rng := NewSource(0)
	require.NotNil(t, rng)
	// must still produce values in range
	v := rng.IntN(10)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 10)
}
