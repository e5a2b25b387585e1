package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(KeySystem, "")
	t.Setenv("WORKER_COUNT", "not a number")
	t.Setenv("BATCH_SIZE", "4")

	cfg := fromEnv()
	assert.Equal(t, "pf1e", cfg.System)
	assert.Equal(t, "sqlite", cfg.CatalogDriver)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 4, cfg.BatchSize)
}

func TestRemember(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".abilitylst")

	values, err := Remembered(path)
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, Remember(path, map[string]string{KeySystem: "35e", KeyDataDir: "/opt/pcgen/data"}))
	require.NoError(t, Remember(path, map[string]string{KeySystem: "5e"}))

	values, err = Remembered(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeySystem: "5e", KeyDataDir: "/opt/pcgen/data"}, values)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_DRIVER=postgres\nEMBEDDING_DIMENSIONS=256\n"), 0o644))
	t.Setenv("CATALOG_DRIVER", "")
	t.Setenv("EMBEDDING_DIMENSIONS", "")
	os.Unsetenv("CATALOG_DRIVER")
	os.Unsetenv("EMBEDDING_DIMENSIONS")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.CatalogDriver)
	assert.Equal(t, 256, cfg.EmbeddingDimensions)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
