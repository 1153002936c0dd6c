package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, envMap(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "lostfound.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Empty(t, cfg.LogPath)
	assert.Equal(t, PhotoBackendDB, cfg.PhotoBackend)
	assert.Equal(t, CacheMemory, cfg.Cache)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	env := envMap(map[string]string{
		"LOSTFOUND_DB":   "env.sqlite3",
		"LOSTFOUND_ADDR": ":9000",
	})

	cfg, err := Load([]string{"-d", "flag.sqlite3"}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "flag.sqlite3", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoadEnvironment(t *testing.T) {
	env := envMap(map[string]string{
		"LOSTFOUND_ADMIN_PASSWORD":   "s3cretpass",
		"LOSTFOUND_PHOTO_BACKEND":    "minio",
		"LOSTFOUND_MINIO_ENDPOINT":   "localhost:9000",
		"LOSTFOUND_MINIO_ACCESS_KEY": "key",
		"LOSTFOUND_MINIO_SECRET_KEY": "secret",
		"LOSTFOUND_MINIO_USE_SSL":    "true",
		"LOSTFOUND_CACHE":            "redis",
		"LOSTFOUND_REDIS_DB":         "2",
		"LOSTFOUND_CACHE_TTL":        "30s",
	})

	cfg, err := Load(nil, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "s3cretpass", cfg.AdminPassword)
	assert.Equal(t, PhotoBackendMinio, cfg.PhotoBackend)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "lostfound", cfg.MinioBucket)
	assert.Equal(t, CacheRedis, cfg.Cache)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"unknown photo backend", nil, map[string]string{"LOSTFOUND_PHOTO_BACKEND": "s3"}},
		{"minio without endpoint", nil, map[string]string{"LOSTFOUND_PHOTO_BACKEND": "minio"}},
		{"unknown cache", nil, map[string]string{"LOSTFOUND_CACHE": "memcached"}},
		{"bad redis db", nil, map[string]string{"LOSTFOUND_REDIS_DB": "one"}},
		{"bad ssl flag", nil, map[string]string{"LOSTFOUND_MINIO_USE_SSL": "maybe"}},
		{"positional argument", []string{"extra"}, nil},
		{"unknown flag", []string{"-x"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, envMap(tt.env), io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"-h"}, envMap(nil), io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOSTFOUND_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("LOSTFOUND_TEST_DOTENV", "")
	os.Unsetenv("LOSTFOUND_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("LOSTFOUND_TEST_DOTENV"))
}
