package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./archives", cfg.ArchiveDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Bind)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.ArchiveDir = "/data/archives"
	cfg.Port = 9090
	cfg.APIKey = "secret"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/archives", loaded.ArchiveDir)
	assert.Equal(t, 9090, loaded.Port)
	assert.Equal(t, "secret", loaded.APIKey)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveConfig_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestGenerateSecureKey(t *testing.T) {
	a, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBootstrapConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := BootstrapConfig(path, "/srv/archives")
	require.NoError(t, err)
	assert.Equal(t, "/srv/archives", cfg.ArchiveDir)
	assert.Len(t, cfg.APIKey, 64)
	assert.True(t, ConfigExists(path))
}
