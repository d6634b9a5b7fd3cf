package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelDebug)

	l.Debug("worker-1", "debug message")
	l.Info("worker-1", "info message")
	l.Warn("worker-1", "warn message")
	l.Error("worker-1", "error message")

	output := buf.String()

	assert.Contains(t, output, "[DEBUG]")
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "[worker-1]")
}

func TestLoggerLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelWarn)

	l.Debug("", "debug message")
	l.Info("", "info message")
	l.Warn("", "warn message")
	l.Error("", "error message")

	output := buf.String()

	assert.NotContains(t, output, "[DEBUG]")
	assert.NotContains(t, output, "[INFO]")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[ERROR]")
}

func TestLoggerSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelError)

	l.Info("", "should not appear")
	assert.NotContains(t, buf.String(), "should not appear")

	l.SetLevel(LevelInfo)
	l.Info("", "should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestLoggerWithoutTag(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)

	l.Info("", "message without tag")

	output := buf.String()
	assert.NotContains(t, output, "[]")
	assert.Contains(t, output, "message without tag")
}

func TestLoggerWithoutTimestamps(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)
	l.SetTimestamps(false)

	l.Info("worker-2", "plain")

	assert.Equal(t, "[INFO] [worker-2] plain\n", buf.String())
}

func TestLoggerFormatArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)

	l.Info("worker-1", "count: %d, name: %s", 42, "test")

	assert.Contains(t, buf.String(), "count: 42, name: test")
}

func TestLoggerWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelError)

	_, err := fmt.Fprintln(l, "raw report")
	require.NoError(t, err)

	// Write bypasses level filtering
	assert.Equal(t, "raw report\n", buf.String())
}

func TestLoggerConcurrentLinesDoNotInterleave(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)
	l.SetTimestamps(false)

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag := fmt.Sprintf("worker-%d", w)
			for i := range perWriter {
				l.Info(tag, "line %d of %s", i, strings.Repeat("x", 32))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, writers*perWriter)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[INFO] [worker-"), "garbled line: %q", line)
		assert.True(t, strings.HasSuffix(line, strings.Repeat("x", 32)), "garbled line: %q", line)
	}
}
