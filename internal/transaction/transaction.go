package transaction

import (
	"fmt"
	"strings"
	"time"
)

// Kind はシミュレートする処理の種別
type Kind int

const (
	KindDatabaseQuery Kind = iota
	KindFileOperation
	KindCalculation

	numKinds = 3
)

// Kinds は全ての種別を定義順で返す
func Kinds() []Kind {
	return []Kind{KindDatabaseQuery, KindFileOperation, KindCalculation}
}

func (k Kind) String() string {
	switch k {
	case KindDatabaseQuery:
		return "DatabaseQuery"
	case KindFileOperation:
		return "FileOperation"
	case KindCalculation:
		return "Calculation"
	default:
		return "Unknown"
	}
}

// Label はコンソール表示用のラベルを返す
func (k Kind) Label() string {
	switch k {
	case KindDatabaseQuery:
		return "Database query"
	case KindFileOperation:
		return "File operation"
	case KindCalculation:
		return "Calculation"
	default:
		return "Unknown"
	}
}

// Activity は処理中に表示する動作の説明を返す
func (k Kind) Activity() string {
	switch k {
	case KindDatabaseQuery:
		return "Querying database"
	case KindFileOperation:
		return "Processing file"
	case KindCalculation:
		return "Running calculation"
	default:
		return "Processing"
	}
}

// Valid は定義済みの種別かどうかを返す
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid transaction kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind は種別名から Kind を返す
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction kind: %q", s)
}

// Transaction はバッチ内の1件のトランザクション
type Transaction struct {
	ID         int     `json:"id"`
	Kind       Kind    `json:"kind"`
	DurationMs int     `json:"duration_ms"`
	Result     float64 `json:"result"`
	Processed  bool    `json:"processed"`
}

// Latency はシミュレートする待機時間を返す
func (t Transaction) Latency() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Batch は固定長のトランザクション列
//
// 生成後に要素が増減することはない。Result は担当ワーカーだけが書き込む。
type Batch struct {
	items []Transaction
}

// NewBatch は与えられたトランザクションからバッチを作成する
func NewBatch(items []Transaction) *Batch {
	copied := make([]Transaction, len(items))
	copy(copied, items)
	return &Batch{items: copied}
}

// Len はトランザクション数を返す
func (b *Batch) Len() int {
	return len(b.items)
}

// At は index 番目のトランザクションのコピーを返す
func (b *Batch) At(index int) Transaction {
	return b.items[index]
}

// SetResult は index 番目の結果を書き込む
// 同じスロットへの二重書き込みはパーティションの欠陥なので panic する
func (b *Batch) SetResult(index int, result float64) {
	slot := &b.items[index]
	if slot.Processed {
		panic(fmt.Sprintf("transaction %d processed twice", slot.ID))
	}
	slot.Result = result
	slot.Processed = true
}

// Transactions は全トランザクションのコピーを返す
// 並列フェーズの完了後にのみ呼ぶこと
func (b *Batch) Transactions() []Transaction {
	out := make([]Transaction, len(b.items))
	copy(out, b.items)
	return out
}

// TotalLatency は全トランザクションの待機時間の合計を返す
func (b *Batch) TotalLatency() time.Duration {
	return b.LatencyOf(0, len(b.items))
}

// LatencyOf は [start, end) の待機時間の合計を返す
func (b *Batch) LatencyOf(start, end int) time.Duration {
	var total time.Duration
	for i := start; i < end; i++ {
		total += b.items[i].Latency()
	}
	return total
}

// Pending は未処理のトランザクション数を返す
func (b *Batch) Pending() int {
	n := 0
	for _, t := range b.items {
		if !t.Processed {
			n++
		}
	}
	return n
}

// Listing は生成されたトランザクションの一覧を返す
func (b *Batch) Listing() string {
	var sb strings.Builder
	sb.WriteString("=== GENERATED TRANSACTIONS ===\n")
	sb.WriteString("All durations are in milliseconds (ms)\n\n")
	for _, t := range b.items {
		fmt.Fprintf(&sb, "  Transaction %d: %s (%d ms)\n", t.ID, t.Kind.Label(), t.DurationMs)
	}
	return sb.String()
}
