package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_CustomHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("LIVELY_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(tmp, "logs"), paths.Logs)
	assert.Equal(t, filepath.Join(tmp, "data"), paths.Data)
}

func TestResolvePaths_DefaultHome(t *testing.T) {
	t.Setenv("LIVELY_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".lively"), paths.Base)
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("LIVELY_HOME", t.TempDir())

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	for _, d := range []string{paths.Base, paths.Logs, paths.Data} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLogFileAndDevBackendDB(t *testing.T) {
	paths := Paths{Logs: "/x/logs", Data: "/x/data"}

	assert.Equal(t, "/x/logs/lively.log", paths.LogFile(LoggingConfig{}))
	assert.Equal(t, "/tmp/l.log", paths.LogFile(LoggingConfig{File: "/tmp/l.log"}))
	assert.Equal(t, "/x/data/devbackend.db", paths.DevBackendDB(DevBackendConfig{}))
	assert.Equal(t, "/tmp/d.db", paths.DevBackendDB(DevBackendConfig{DBPath: "/tmp/d.db"}))
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "backend", []string{"backend"}, false},
		{"two segments", "backend.baseUrl", []string{"backend", "baseUrl"}, false},
		{"empty", "", nil, true},
		{"empty segment", "viewer..addr", nil, true},
		{"trailing dot", "viewer.", nil, true},
		{"blocked __proto__", "foo.__proto__.bar", nil, true},
		{"blocked constructor", "constructor", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetSetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{
		"viewer": map[string]any{
			"addr":    "127.0.0.1:18790",
			"enabled": true,
		},
		"simple": "value",
	}

	val, ok := GetValueAtPath(root, []string{"viewer", "addr"})
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:18790", val)

	_, ok = GetValueAtPath(root, []string{"simple", "sub"})
	assert.False(t, ok, "non-map intermediate")

	SetValueAtPath(root, []string{"backend", "baseUrl"}, "http://x:1")
	val, ok = GetValueAtPath(root, []string{"backend", "baseUrl"})
	assert.True(t, ok)
	assert.Equal(t, "http://x:1", val)

	assert.True(t, UnsetValueAtPath(root, []string{"viewer", "addr"}))
	_, ok = GetValueAtPath(root, []string{"viewer", "addr"})
	assert.False(t, ok)
	val, ok = GetValueAtPath(root, []string{"viewer", "enabled"})
	assert.True(t, ok, "sibling preserved")
	assert.Equal(t, true, val)

	assert.False(t, UnsetValueAtPath(root, []string{"missing", "key"}))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := map[string]any{"viewer": map[string]any{"queueSize": 4}}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"viewer", "queueSize"})
	assert.True(t, ok)
	assert.Equal(t, 4, val)
}

func TestLoadRaw_MissingFile(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
