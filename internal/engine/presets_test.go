package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		config, ok := GetPreset(name)
		require.True(t, ok, "preset %s not found", name)
		assert.Equal(t, name, config.Name)
		assert.NotEmpty(t, config.Description)
		assert.NoError(t, config.Validate())
	}
}

func TestGetPresetNotFound(t *testing.T) {
	_, ok := GetPreset("nonexistent")
	assert.False(t, ok)
}

func TestDefaultPreset(t *testing.T) {
	config := DefaultPreset()
	assert.Equal(t, 20, config.Transactions)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 1.0, config.LatencyScale)
}

func TestUnevenPreset(t *testing.T) {
	config := UnevenPreset()
	assert.Equal(t, 22, config.Transactions)
	assert.Equal(t, 4, config.Workers)
}

func TestOversubscribedPreset(t *testing.T) {
	config := OversubscribedPreset()
	assert.Less(t, config.Transactions, config.Workers)
}

func TestQuickPreset(t *testing.T) {
	config := QuickPreset()
	assert.Equal(t, 0.1, config.LatencyScale)
	assert.Equal(t, 20, config.Transactions)
}
