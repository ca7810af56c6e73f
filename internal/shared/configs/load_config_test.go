package configs

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `server:
  port: 8080
  read_header_timeout: 5
  read_timeout: 10
  write_timeout: 10
  idle_timeout: 60
log:
  level: debug
auth:
  api_keys:
    - key: ak_0123456789abcdef0123456789abcdef
      tenant_id: tenant-1
      project_id: project-1
  widget_token_secret: 0123456789abcdef0123456789abcdef
  widget_token_ttl_minutes: 15
  cache_max_entries: 1024
  cache_ttl_seconds: 300
rate_limit:
  per_ip:
    rate_per_second: 10
    burst: 20
  per_credential:
    rate_per_second: 100
    burst: 500
  sweep_interval_seconds: 30
  idle_eviction_seconds: 60
limits:
  max_body_bytes: 512000
  max_batch_events: 1000
writer:
  flush_size: 200
  flush_interval_ms: 2000
  buffer_cap: 10000
storage:
  root_dir: ./data
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test_config_*.yml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	return tmpfile.Name()
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Auth.APIKeys, 1)
	assert.Equal(t, "tenant-1", cfg.Auth.APIKeys[0].TenantID)
	assert.Equal(t, 15, cfg.Auth.WidgetTokenTTLMinutes)
	assert.Equal(t, 10.0, cfg.RateLimit.PerIP.RatePerSecond)
	assert.Equal(t, 500.0, cfg.RateLimit.PerCredential.Burst)
	assert.Equal(t, 512000, cfg.Limits.MaxBodyBytes)
	assert.Equal(t, 200, cfg.Writer.FlushSize)
	assert.Equal(t, "./data", cfg.Storage.RootDir)
}

func TestLoadConfig_MissingRequiredFields(t *testing.T) {
	// Drop the server port.
	invalid := strings.Replace(validConfigYAML, "  port: 8080\n", "", 1)

	cfg, err := LoadConfig(writeTempConfig(t, invalid))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "port")
}

func TestLoadConfig_InvalidPortRange(t *testing.T) {
	invalid := strings.Replace(validConfigYAML, "port: 8080", "port: 70000", 1)

	cfg, err := LoadConfig(writeTempConfig(t, invalid))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "port")
}

func TestLoadConfig_ShortWidgetTokenSecret(t *testing.T) {
	invalid := strings.Replace(validConfigYAML,
		"widget_token_secret: 0123456789abcdef0123456789abcdef",
		"widget_token_secret: tooshort", 1)

	cfg, err := LoadConfig(writeTempConfig(t, invalid))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadConfig_NoAPIKeys(t *testing.T) {
	invalid := strings.Replace(validConfigYAML,
		`  api_keys:
    - key: ak_0123456789abcdef0123456789abcdef
      tenant_id: tenant-1
      project_id: project-1
`, "  api_keys: []\n", 1)

	cfg, err := LoadConfig(writeTempConfig(t, invalid))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("/does/not/exist.yml")
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
