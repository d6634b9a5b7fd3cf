package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"txnsim/internal/engine"
	"txnsim/internal/logger"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Batch   BatchConfig   `yaml:"batch" json:"batch"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// BatchConfig はバッチ実行の設定
type BatchConfig struct {
	Preset       string  `yaml:"preset" json:"preset"`
	Name         string  `yaml:"name" json:"name"`
	Description  string  `yaml:"description" json:"description"`
	Transactions int     `yaml:"transactions" json:"transactions"`
	Workers      int     `yaml:"workers" json:"workers"`
	Seed         int64   `yaml:"seed" json:"seed"`
	LatencyScale float64 `yaml:"latency_scale" json:"latency_scale"`
}

// LoggingConfig はログ設定
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Timestamps *bool  `yaml:"timestamps" json:"timestamps"`
}

// ServerConfig はHTTPサーバー設定
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToEngineConfig はFileConfigをengine.Configに変換する
// preset が指定されていればそれを基に、なければ engine.DefaultConfig を基にする
func (f *FileConfig) ToEngineConfig() (engine.Config, error) {
	bc := f.Batch

	config := engine.DefaultConfig()
	if bc.Preset != "" {
		preset, ok := engine.GetPreset(bc.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset: %s (available: %v)", bc.Preset, engine.ListPresets())
		}
		config = preset
	}

	if bc.Name != "" {
		config.Name = bc.Name
	}
	if bc.Description != "" {
		config.Description = bc.Description
	}
	if bc.Transactions > 0 {
		config.Transactions = bc.Transactions
	}
	if bc.Workers > 0 {
		config.Workers = bc.Workers
	}
	if bc.Seed != 0 {
		config.Seed = bc.Seed
	}
	if bc.LatencyScale > 0 {
		config.LatencyScale = bc.LatencyScale
	}

	return config, nil
}

// LogLevel は設定されたログレベルを返す
func (f *FileConfig) LogLevel() (logger.Level, error) {
	return logger.ParseLevel(f.Logging.Level)
}

// Timestamps はタイムスタンプ出力の有無を返す（未指定で true）
func (f *FileConfig) Timestamps() bool {
	if f.Logging.Timestamps == nil {
		return true
	}
	return *f.Logging.Timestamps
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	bc := f.Batch

	if bc.Transactions < 0 {
		return fmt.Errorf("batch.transactions must be non-negative")
	}

	if bc.Workers < 0 {
		return fmt.Errorf("batch.workers must be non-negative")
	}

	if bc.LatencyScale < 0 {
		return fmt.Errorf("batch.latency_scale must be non-negative")
	}

	if bc.Preset != "" {
		if _, ok := engine.GetPreset(bc.Preset); !ok {
			return fmt.Errorf("batch.preset %q is not a known preset", bc.Preset)
		}
	}

	if _, err := f.LogLevel(); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}
