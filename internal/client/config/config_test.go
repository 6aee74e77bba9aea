package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("BLOGCTL_BASE_URL", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blogctl"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogctl", "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("BLOGCTL_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.CountConcurrency)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(data, "blogctl", "state.json"), cfg.Storage.Path)
}

func TestLoadYAMLConfig(t *testing.T) {
	writeConfig(t, `base_url: https://blog.example.com
token: abc
timeout: 5s
count_concurrency: 8
storage:
  backend: Redis
  redis_addr: localhost:6379
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 8, cfg.CountConcurrency)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
}

func TestEnvOverridesBaseURL(t *testing.T) {
	writeConfig(t, "base_url: https://blog.example.com\n")
	t.Setenv("BLOGCTL_BASE_URL", "http://127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BaseURL)
}

func TestMongoDefaults(t *testing.T) {
	writeConfig(t, "storage:\n  backend: mongo\n  mongo_uri: mongodb://localhost:27017\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "blogctl", cfg.Storage.MongoDatabase)
}

func TestInvalidStorage(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"unknown backend", "storage:\n  backend: sqlite\n", "unknown storage backend"},
		{"redis without addr", "storage:\n  backend: redis\n", "redis_addr"},
		{"mongo without uri", "storage:\n  backend: mongo\n", "mongo_uri"},
		{"bad yaml", "storage: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.body)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/blog/state.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "blog", "state.json"), got)

	got, err = ExpandPath("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandPath("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BLOGCTL_BASE_URL", "")

	cfg := Default()
	cfg.BaseURL = "https://saved.example.com"
	cfg.Storage.Path = "/tmp/blogctl-state.json"
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com", loaded.BaseURL)
	assert.Equal(t, "/tmp/blogctl-state.json", loaded.Storage.Path)
}
