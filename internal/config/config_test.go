package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrosmart/internal/game"
)

func TestLoadEngineDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PETRO_DATA_DIR", dir)
	t.Setenv("PETRO_STORE", "")
	t.Setenv("PETRO_LANG", "")
	t.Setenv("PETRO_SQLITE_PATH", "")
	t.Setenv("PETRO_CONTENT_URL", "")
	t.Setenv("PETRO_CONTENT_TIMEOUT", "")

	cfg, err := LoadEngineFromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, game.LangEN, cfg.Language)
	assert.Equal(t, filepath.Join(dir, "petrosmart.db"), cfg.Store.SQLitePath)
	assert.Equal(t, 20*time.Second, cfg.Content.Timeout)
	assert.Empty(t, cfg.Content.URL)
}

func TestLoadEngineOverrides(t *testing.T) {
	t.Setenv("PETRO_DATA_DIR", t.TempDir())
	t.Setenv("PETRO_STORE", "SQLite")
	t.Setenv("PETRO_LANG", "id")
	t.Setenv("PETRO_CONTENT_URL", "https://content.example/ ")
	t.Setenv("PETRO_CONTENT_TIMEOUT", "bogus")
	t.Setenv("PETRO_CONTENT_RPS", "0.5")

	cfg, err := LoadEngineFromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, game.LangID, cfg.Language)
	assert.Equal(t, "https://content.example", cfg.Content.URL)
	assert.Equal(t, 20*time.Second, cfg.Content.Timeout)
	assert.Equal(t, 0.5, cfg.Content.RPS)
}

func TestLoadEngineRejectsBadStore(t *testing.T) {
	t.Setenv("PETRO_DATA_DIR", t.TempDir())
	t.Setenv("PETRO_STORE", "redis")
	_, err := LoadEngineFromEnv()
	require.Error(t, err)

	t.Setenv("PETRO_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadEngineFromEnv()
	require.Error(t, err)
}

func TestLoadAPIAddr(t *testing.T) {
	t.Setenv("PETRO_DATA_DIR", t.TempDir())
	t.Setenv("PETRO_STORE", "")
	t.Setenv("PORT", "9090")
	cfg, err := LoadAPIFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 20, cfg.Burst)

	t.Setenv("PORT", "")
	t.Setenv("PETRO_API_ADDR", "127.0.0.1:7000")
	t.Setenv("PETRO_API_BURST", "5")
	cfg, err = LoadAPIFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, 5, cfg.Burst)
}
