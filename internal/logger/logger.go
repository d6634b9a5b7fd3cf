package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level はログレベルを表す
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel は文字列からログレベルを返す
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Logger はスレッドセーフな出力シンク
// 1メッセージにつき1回だけロックを取得し、出力後すぐに解放する
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	minLevel   Level
	timestamps bool
}

// Default はデフォルトのロガー
var Default = New(os.Stdout, LevelInfo)

// New は新しいロガーを作成する
func New(out io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:        out,
		minLevel:   minLevel,
		timestamps: true,
	}
}

// SetLevel はログレベルを設定する
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetTimestamps はタイムスタンプ出力の有無を設定する
func (l *Logger) SetTimestamps(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = enabled
}

// Write は生のテキストをロック下で出力する（io.Writer）
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Write(p)
}

// log は指定されたレベルでログを出力する
func (l *Logger) log(level Level, tag string, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)

	var b strings.Builder
	if l.timestamps {
		b.WriteString("[")
		b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
		b.WriteString("] ")
	}
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	if tag != "" {
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("] ")
	}
	b.WriteString(msg)
	b.WriteString("\n")

	_, _ = io.WriteString(l.out, b.String())
}

// Debug はデバッグログを出力する
func (l *Logger) Debug(tag string, format string, args ...any) {
	l.log(LevelDebug, tag, format, args...)
}

// Info は情報ログを出力する
func (l *Logger) Info(tag string, format string, args ...any) {
	l.log(LevelInfo, tag, format, args...)
}

// Warn は警告ログを出力する
func (l *Logger) Warn(tag string, format string, args ...any) {
	l.log(LevelWarn, tag, format, args...)
}

// Error はエラーログを出力する
func (l *Logger) Error(tag string, format string, args ...any) {
	l.log(LevelError, tag, format, args...)
}

// グローバル関数（デフォルトロガーを使用）

// Debug はデバッグログを出力する
func Debug(tag string, format string, args ...any) {
	Default.Debug(tag, format, args...)
}

// Info は情報ログを出力する
func Info(tag string, format string, args ...any) {
	Default.Info(tag, format, args...)
}

// Warn は警告ログを出力する
func Warn(tag string, format string, args ...any) {
	Default.Warn(tag, format, args...)
}

// Error はエラーログを出力する
func Error(tag string, format string, args ...any) {
	Default.Error(tag, format, args...)
}
