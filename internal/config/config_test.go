package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
[app]
port = 9000

[database]
driver = "sqlite"
dsn = "file.db"

[vector]
backend = "memory"

[redis]
enabled = true
listing_ttl_seconds = 30
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("SILENCE_THRESHOLD_OFFSET_DB", "16.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9100", cfg.HTTPAddr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Vector.Backend)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30, cfg.Redis.ListingTTLSeconds)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 16.5, cfg.Silence.ThresholdOffsetDB)
	assert.Equal(t, 1000, cfg.Silence.MinSilenceMs)
	assert.Equal(t, "hf_embeddings", cfg.Vector.IndexName)
}

func TestLoadHonoursConnectionStringEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("NEON_CONNECTION_STRING", "postgres://neon/db")
	t.Setenv("MONGODBATLAS_CONNECTION_STRING", "mongodb+srv://atlas")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://neon/db", cfg.Database.DSN)
	assert.Equal(t, "mongodb+srv://atlas", cfg.Vector.MongoURI)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DATABASE_DSN", "x")
	t.Setenv("VECTOR_BACKEND", "chroma")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chroma")
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	t.Setenv("SOME_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
	assert.True(t, getEnvAsBool("SOME_BOOL", true))
	assert.Equal(t, 1.5, getEnvAsFloat("UNSET_FLOAT_KEY", 1.5))
}
