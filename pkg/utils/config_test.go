package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, "data/reviews.json", cfg.Catalog.Source)
	assert.NotEmpty(t, cfg.Profile.Secret)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\nstorage:\n  driver: memory\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	// untouched keys keep their defaults
	assert.Equal(t, "reviewhub", cfg.Profile.Issuer)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("REVIEWHUB_ADDR", ":7000")
	t.Setenv("REVIEWHUB_CATALOG_SOURCE", "https://example.com/reviews.json")
	t.Setenv("REVIEWHUB_S3_PATH_STYLE", "true")
	t.Setenv("REVIEWHUB_DB_DSN", "/tmp/reviews.db")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "https://example.com/reviews.json", cfg.Catalog.Source)
	assert.True(t, cfg.Catalog.S3.PathStyle)
	assert.Equal(t, "/tmp/reviews.db", cfg.Storage.DSN)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("REVIEWHUB_DB_DRIVER", "mysql")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestProfileDuration(t *testing.T) {
	assert.Equal(t, 48*3600.0, ProfileConfig{TTLHours: 48}.Duration().Seconds())
	assert.Equal(t, 365*24.0, ProfileConfig{}.Duration().Hours())
}
