package transaction

import (
	"fmt"
	"time"
)

// CalculationIterations は計算処理のループ回数
const CalculationIterations = 100000

// DatabaseQueryResult はDBクエリの結果を返す
func DatabaseQueryResult(id int) float64 {
	return float64(id) * 3.14
}

// FileOperationResult はファイル処理の結果を返す
func FileOperationResult(id int) float64 {
	return float64(id * 100)
}

// CalculationResult は固定回数の累積計算を行う
func CalculationResult(id int) float64 {
	var sum float64
	for i := range CalculationIterations {
		sum += float64(id*i) * 0.00001
	}
	return sum
}

// Compute は種別に応じた結果を計算する（待機なし）
// 未定義の種別は生成器の欠陥なので panic する
func Compute(kind Kind, id int) float64 {
	switch kind {
	case KindDatabaseQuery:
		return DatabaseQueryResult(id)
	case KindFileOperation:
		return FileOperationResult(id)
	case KindCalculation:
		return CalculationResult(id)
	default:
		panic(fmt.Sprintf("unknown transaction kind %d for transaction %d", int(kind), id))
	}
}

// Sleeper はレイテンシのシミュレーションに使う待機関数
type Sleeper func(time.Duration)

// Simulator は種別ごとの処理ルーチンを実行する
type Simulator struct {
	scale float64
	sleep Sleeper
}

// NewSimulator は新しいSimulatorを作成する
// scale は待機時間の倍率（0以下で1.0）
func NewSimulator(scale float64) *Simulator {
	if scale <= 0 {
		scale = 1.0
	}
	return &Simulator{
		scale: scale,
		sleep: time.Sleep,
	}
}

// WithSleeper は待機関数を差し替えたSimulatorを返す
func (s *Simulator) WithSleeper(sleep Sleeper) *Simulator {
	return &Simulator{
		scale: s.scale,
		sleep: sleep,
	}
}

// Scale は待機時間の倍率を返す
func (s *Simulator) Scale() float64 {
	return s.scale
}

// Latency は倍率適用後の待機時間を返す
func (s *Simulator) Latency(t Transaction) time.Duration {
	return time.Duration(float64(t.Latency()) * s.scale)
}

// Run はトランザクションの待機と計算を行い、結果を返す
func (s *Simulator) Run(t Transaction) float64 {
	if !t.Kind.Valid() {
		panic(fmt.Sprintf("unknown transaction kind %d for transaction %d", int(t.Kind), t.ID))
	}
	s.sleep(s.Latency(t))
	return Compute(t.Kind, t.ID)
}
