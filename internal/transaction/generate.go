package transaction

import (
	"math/rand/v2"
	"time"
)

const (
	MinDurationMs = 100
	MaxDurationMs = 500
)

// NewSource はシード付きの乱数生成器を返す
// seed が 0 の場合は現在時刻を使用
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Generate は n 件のトランザクションを生成する
// ID は 1..n、種別と待機時間は rng から一様に選ぶ
func Generate(n int, rng *rand.Rand) *Batch {
	if n < 0 {
		n = 0
	}
	items := make([]Transaction, n)
	for i := range items {
		items[i] = Transaction{
			ID:         i + 1,
			Kind:       Kind(rng.IntN(numKinds)),
			DurationMs: MinDurationMs + rng.IntN(MaxDurationMs-MinDurationMs+1),
		}
	}
	return &Batch{items: items}
}
