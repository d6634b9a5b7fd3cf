// Package main is the entry point for txnsim.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"txnsim/internal/api"
	"txnsim/internal/config"
	"txnsim/internal/engine"
	"txnsim/internal/logger"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile   string
	presetName   string
	transactions int
	workers      int
	seed         int64
	scale        float64
	logLevel     string
	serverAddr   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "設定ファイルパス (YAML/JSON)")
	flag.StringVar(&opts.presetName, "preset", "", "プリセット名 (default, uneven, oversubscribed, quick)")
	flag.IntVar(&opts.transactions, "transactions", 0, "トランザクション数 (既定 20)")
	flag.IntVar(&opts.workers, "workers", 0, "ワーカー数 (既定 4)")
	flag.Int64Var(&opts.seed, "seed", 0, "乱数シード (0で現在時刻)")
	flag.Float64Var(&opts.scale, "scale", 0, "待機時間の倍率 (例: 0.1)")
	flag.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	flag.StringVar(&opts.serverAddr, "addr", ":8080", "サーバーアドレス (例: :8080)")
	var (
		listPresets = flag.Bool("list-presets", false, "利用可能なプリセットを表示")
		showVersion = flag.Bool("version", false, "バージョンを表示")
		serverMode  = flag.Bool("server", false, "HTTP APIサーバーモードで起動")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `txnsim - Parallel Transaction Processing Simulator

Usage:
  txnsim [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 既定の20件を4ワーカーで処理
  txnsim

  # 再現可能な実行
  txnsim --seed 42

  # 割り切れないバッチ
  txnsim --preset uneven

  # 設定ファイルから実行
  txnsim --config batch.yaml

  # HTTP APIサーバーモード
  txnsim --server --addr :3000
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("txnsim version %s\n", version)
		return
	}

	if *listPresets {
		printPresets(os.Stdout)
		return
	}

	cfg, fileCfg, err := buildConfig(opts)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	if *serverMode {
		addr := opts.serverAddr
		if fileCfg != nil && fileCfg.Server.Addr != "" && !isFlagSet("addr") {
			addr = fileCfg.Server.Addr
		}
		if err := runServer(addr, cfg); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(cfg); err != nil {
		logger.Error("", "実行エラー: %v", err)
		os.Exit(1)
	}
}

// buildConfig は実行設定を構築する
// 優先順位: フラグ > 設定ファイル > プリセット > 既定値
func buildConfig(opts options) (engine.Config, *config.FileConfig, error) {
	var cfg engine.Config
	var fileCfg *config.FileConfig

	switch {
	case opts.configFile != "":
		loaded, err := config.LoadFile(opts.configFile)
		if err != nil {
			return cfg, nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, nil, fmt.Errorf("設定検証エラー: %w", err)
		}
		cfg, err = loaded.ToEngineConfig()
		if err != nil {
			return cfg, nil, fmt.Errorf("設定変換エラー: %w", err)
		}
		fileCfg = loaded
	case opts.presetName != "":
		preset, ok := engine.GetPreset(opts.presetName)
		if !ok {
			return cfg, nil, fmt.Errorf("不明なプリセット: %s (利用可能: %v)", opts.presetName, engine.ListPresets())
		}
		cfg = preset
	default:
		cfg = engine.DefaultConfig()
	}

	if opts.transactions > 0 {
		cfg.Transactions = opts.transactions
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.scale > 0 {
		cfg.LatencyScale = opts.scale
	}

	level := logger.LevelInfo
	timestamps := true
	if fileCfg != nil {
		l, err := fileCfg.LogLevel()
		if err != nil {
			return cfg, nil, err
		}
		level = l
		timestamps = fileCfg.Timestamps()
	}
	if opts.logLevel != "" {
		l, err := logger.ParseLevel(opts.logLevel)
		if err != nil {
			return cfg, nil, err
		}
		level = l
	}

	log := logger.New(os.Stdout, level)
	log.SetTimestamps(timestamps)
	cfg.Logger = log

	return cfg, fileCfg, cfg.Validate()
}

// isFlagSet はフラグが明示的に指定されたかを返す
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// runBatch はバッチを1回実行し、レポートを出力する
func runBatch(cfg engine.Config) error {
	out := cfg.Logger
	if out == nil {
		out = logger.Default
	}
	printBanner(out, cfg)

	result, err := engine.New(cfg).Run()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, result.Report())
	return nil
}

// printBanner は起動時のバナーを出力する
func printBanner(w io.Writer, cfg engine.Config) {
	fmt.Fprintln(w, "txnsim - Parallel Transaction Processing Simulator")
	fmt.Fprintln(w, "====================================================")
	fmt.Fprintf(w, "Batch: %s\n", cfg.Name)
	fmt.Fprintf(w, "Transactions: %d, Workers: %d\n", cfg.Transactions, cfg.Workers)
	fmt.Fprintln(w, "Durations: milliseconds (ms); total time: seconds (s) and milliseconds (ms)")
	fmt.Fprintln(w, "====================================================")
	fmt.Fprintln(w)
}

// printPresets は利用可能なプリセットを表示する
func printPresets(w io.Writer) {
	fmt.Fprintln(w, "利用可能なプリセット:")
	fmt.Fprintln(w)

	for _, name := range engine.ListPresets() {
		p, _ := engine.GetPreset(name)
		fmt.Fprintf(w, "  %-16s %s\n", p.Name, p.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "使用例: txnsim --preset uneven")
}

// runServer はHTTP APIサーバーを起動する
func runServer(addr string, cfg engine.Config) error {
	fmt.Println("txnsim - HTTP API Server")
	fmt.Println("========================")
	fmt.Printf("Starting server on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、サーバーを終了中...")
		cancel()
	}()

	server := api.NewServer(addr, cfg)
	return server.Start(ctx)
}
