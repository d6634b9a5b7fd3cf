// Package engine はバッチ実行のオーケストレーションを提供する。
//
// Engine はトランザクションバッチを逐次生成し、固定数のワーカーに静的に
// 分割して並列処理させ、全ワーカーの合流後に所要時間と結果をまとめる。
//
// # 流れ
//
// - バッチ生成（逐次）
// - 担当範囲の計算とワーカー起動（並列）
// - 全ワーカーの合流（タイムアウトなし）
// - 所要時間の計測と結果レポート（逐次）
//
// # プリセット
//
// - default: 20件、4ワーカー
// - uneven: 22件、4ワーカー（最後のワーカーが7件）
// - oversubscribed: 3件、4ワーカー（空の範囲を持つワーカーあり）
// - quick: default の待機時間を1/10にしたもの
//
// # 使用例
//
//	e := engine.New(engine.DefaultConfig())
//	result, err := e.Run()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report())
package engine
