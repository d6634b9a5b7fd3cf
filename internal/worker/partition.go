package worker

import (
	"errors"
	"fmt"
)

// ErrInvalidPartition はパーティションの入力が不正な場合のエラー
var ErrInvalidPartition = errors.New("invalid partition")

// Range はワーカーが担当するバッチインデックスの範囲 [Start, End)
type Range struct {
	Worker int `json:"worker"` // 1始まり
	Start  int `json:"start"`
	End    int `json:"end"`
}

// Len は範囲内のトランザクション数を返す
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty は範囲が空かどうかを返す
func (r Range) Empty() bool {
	return r.End <= r.Start
}

func (r Range) String() string {
	if r.Empty() {
		return fmt.Sprintf("worker %d: empty", r.Worker)
	}
	return fmt.Sprintf("worker %d: [%d, %d)", r.Worker, r.Start, r.End)
}

// Partition は n 件のインデックスを m 個の連続した範囲に分割する
//
// base = n / m とし、ワーカー k (1始まり) は [(k-1)*base, k*base) を担当する。
// 最後のワーカーは n まで延長して余りを吸収する。n < m の場合、
// 最後以外のワーカーは空の範囲を受け取る。
func Partition(n, m int) ([]Range, error) {
	if m <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidPartition, m)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: transaction count must be non-negative, got %d", ErrInvalidPartition, n)
	}

	base := n / m
	ranges := make([]Range, m)
	for k := 1; k <= m; k++ {
		r := Range{
			Worker: k,
			Start:  (k - 1) * base,
			End:    k * base,
		}
		if k == m {
			r.End = n
		}
		ranges[k-1] = r
	}
	return ranges, nil
}

// CheckPartition は ranges が [0, n) を重複・欠落なく覆っているか検証する
func CheckPartition(ranges []Range, n int) error {
	next := 0
	for _, r := range ranges {
		if r.Empty() {
			continue
		}
		if r.Start != next {
			return fmt.Errorf("%w: %s starts at %d, expected %d", ErrInvalidPartition, r, r.Start, next)
		}
		next = r.End
	}
	if next != n {
		return fmt.Errorf("%w: ranges cover [0, %d), expected [0, %d)", ErrInvalidPartition, next, n)
	}
	return nil
}
