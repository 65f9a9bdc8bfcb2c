package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "동물특공대", cfg.AdminCode)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server_port: \"9090\"\nredis_addr: redis:6379\nrefresh_token_ttl: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("ANIMALSQUAD_REDIS_ADDR", "cache:6380")
	t.Setenv("ANIMALSQUAD_REDIS_DB", "2")
	t.Setenv("ANIMALSQUAD_APP_ENV", "production")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.RefreshTokenTTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFrom_RejectsEmptySecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: \"\"\n"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "bucket_url", envKey("ANIMALSQUAD_BUCKET_URL"))
}
