package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, c.Storage.Kind)
	assert.Equal(t, "fields", c.Executor.Tokenizer)
	assert.True(t, c.Executor.InheritEnv)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeSettings(t, `
storage:
  kind: sqlite
  sqlite:
    database_url: /tmp/tasks.db
executor:
  tokenizer: shell
  timeout: 30s
  inherit_env: false
log:
  level: debug
  format: json
`)
	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, c.Storage.Kind)
	assert.Equal(t, "/tmp/tasks.db", c.Storage.SQLite.DatabaseURL)
	assert.Equal(t, "shell", c.Executor.Tokenizer)
	assert.Equal(t, 30*time.Second, c.Executor.Timeout)
	assert.False(t, c.Executor.InheritEnv)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "tasc:", c.Storage.Redis.KeyPrefix)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeSettings(t, "storage:\n  kind: memory\n")
	t.Setenv("TASC_STORAGE", "redis")
	t.Setenv("TASC_REDIS_ADDRESS", "localhost:6379")
	t.Setenv("TASC_REDIS_DB", "2")
	t.Setenv("TASC_LOG_LEVEL", "warn")

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, c.Storage.Kind)
	assert.Equal(t, "localhost:6379", c.Storage.Redis.Addr)
	assert.Equal(t, 2, c.Storage.Redis.DB)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestDatabaseURLFromEnvironment(t *testing.T) {
	t.Setenv("TASC_STORAGE", "sqlite")
	t.Setenv("DATABASE_URL", "file:tasks.db")

	c, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, "file:tasks.db", c.Storage.SQLite.DatabaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Kind = "postgres" }},
		{"sqlite without url", func(c *Config) { c.Storage.Kind = StorageSQLite }},
		{"redis without address", func(c *Config) { c.Storage.Kind = StorageRedis }},
		{"unknown tokenizer", func(c *Config) { c.Executor.Tokenizer = "regex" }},
		{"negative timeout", func(c *Config) { c.Executor.Timeout = -time.Second }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	assert.NoError(t, c.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeSettings(t, "storage: [\n")
	_, err := Load(path, true)
	assert.Error(t, err)
}
