package engine

// DefaultPreset は既定の構成（20件、4ワーカー）を返す
func DefaultPreset() Config {
	return DefaultConfig()
}

// UnevenPreset は割り切れないバッチを返す
// 最後のワーカーが余りを吸収する
func UnevenPreset() Config {
	config := DefaultConfig()
	config.Name = "uneven"
	config.Description = "22 transactions across 4 workers; the last worker absorbs the remainder"
	config.Transactions = 22
	return config
}

// OversubscribedPreset はワーカー数がトランザクション数を上回る構成を返す
func OversubscribedPreset() Config {
	config := DefaultConfig()
	config.Name = "oversubscribed"
	config.Description = "3 transactions across 4 workers; some workers get an empty range"
	config.Transactions = 3
	return config
}

// QuickPreset は待機時間を1/10にした動作確認用の構成を返す
func QuickPreset() Config {
	config := DefaultConfig()
	config.Name = "quick"
	config.Description = "Default batch with latency scaled to 10%"
	config.LatencyScale = 0.1
	return config
}

// GetPreset は名前からプリセットを取得する
func GetPreset(name string) (Config, bool) {
	presets := map[string]func() Config{
		"default":        DefaultPreset,
		"uneven":         UnevenPreset,
		"oversubscribed": OversubscribedPreset,
		"quick":          QuickPreset,
	}

	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{"default", "uneven", "oversubscribed", "quick"}
}
