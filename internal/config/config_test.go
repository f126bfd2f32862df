package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/courier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
addr: ":9090"
log:
  format: json
session:
  ttl: 600
store:
  backend: redis
redis:
  addr: redis:6379
  db: 2
`)
	cfg, err := config.Load(path, []string{
		"COURIER_LOG_LEVEL=debug",
		"COURIER_REDIS_DB=3",
		"COURIER_CORS_ALLOWED_ORIGINS=https://a.example,https://b.example",
		"COURIER_METRICS_ENABLED=false",
		"COURIER_SWEEP_INTERVAL=30s",
		"HOME=/root",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "courier:", cfg.Redis.Prefix)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  []string
	}{
		{name: "unknown key", body: "adress: ':1'\n"},
		{name: "bad backend", body: "store:\n  backend: etcd\n"},
		{name: "bad claims backend", env: []string{"COURIER_CLAIMS_BACKEND=postgres"}},
		{name: "dynamodb without table", body: "claims:\n  backend: dynamodb\ndynamodb:\n  table: ''\n"},
		{name: "bad duration", env: []string{"COURIER_SESSION_TTL=forever"}},
		{name: "zero ttl", env: []string{"COURIER_SESSION_TTL=0"}},
		{name: "bad format", body: "log:\n  format: xml\n"},
		{name: "malformed yaml", body: "addr: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.body != "" {
				path = writeFile(t, tt.body)
			}
			_, err := config.Load(path, tt.env)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestKeysAndEnvNames(t *testing.T) {
	keys := config.Keys()
	assert.Contains(t, keys, "dynamodb.endpoint")
	assert.Contains(t, keys, "max_input_size")
	assert.Equal(t, "COURIER_SQS_QUEUE_URL", config.EnvName("sqs.queue_url"))
}
