package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile-token-game/game/engine"
)

func TestLoadDefaults(t *testing.T) {
	// Given no settings file and no overrides
	// When loading settings
	settings, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

	// Then the defaults apply
	require.NoError(t, err)
	assert.Equal(t, "localhost", settings.Host)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, "classic", settings.DefaultPreset)
	assert.Equal(t, []int{2, 4}, settings.SpawnValues)
	assert.False(t, settings.Ngrok.Enabled)
	assert.False(t, settings.Telemetry.Enabled)
	assert.Equal(t, "localhost:8080", settings.Addr())

	policy, err := settings.Policy()
	require.NoError(t, err)
	assert.Equal(t, engine.PadTruncated, policy)
}

func TestLoadFromEnvironment(t *testing.T) {
	// Given environment overrides
	t.Setenv("PORT", "9999")
	t.Setenv("DECODE_POLICY", "strict")
	t.Setenv("SPAWN_VALUES", "2")
	t.Setenv("NGROK_ENABLED", "true")

	// When loading settings without a file
	settings, err := Load("")

	// Then the environment wins over defaults
	require.NoError(t, err)
	assert.Equal(t, 9999, settings.Port)
	assert.True(t, settings.Ngrok.Enabled)

	policy, err := settings.Policy()
	require.NoError(t, err)
	assert.Equal(t, engine.Strict, policy)

	tiles, err := settings.Spawn()
	require.NoError(t, err)
	assert.Equal(t, []engine.Tile{2}, tiles)
}

func TestLoadFromFile(t *testing.T) {
	// Given a settings file
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "host: 0.0.0.0\nport: 3000\nlog-format: json\nspawn-values: [4, 8]\nngrok:\n  domain: tiles.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	// When loading it
	settings, err := Load(path)

	// Then file values are used and unset fields keep their defaults
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", settings.Addr())
	assert.Equal(t, "json", settings.LogFormat)
	assert.Equal(t, []int{4, 8}, settings.SpawnValues)
	assert.Equal(t, "tiles.example.com", settings.Ngrok.Domain)
	assert.Equal(t, "presets", settings.PresetsDir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown policy", "DECODE_POLICY", "lenient"},
		{"zero spawn value", "SPAWN_VALUES", "2,0"},
		{"huge spawn value", "SPAWN_VALUES", "70000"},
		{"port out of range", "PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestUsage(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "DECODE_POLICY")
	assert.Contains(t, usage, "NGROK_AUTHTOKEN")
}
