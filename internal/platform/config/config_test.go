package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.Workflow.PollInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.Workflow.DebounceDelay)
	assert.Empty(t, cfg.Redis.URL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CASL_ADDR", ":9090")
	t.Setenv("CASL_POLL_INTERVAL", "1500ms")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CASL_SESSION_STARTS_PER_MINUTE", "5")
	t.Setenv("CASL_DEBOUNCE_DELAY", "not-a-duration")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Workflow.PollInterval)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Session.StartsPerMinute)
	assert.Equal(t, 300*time.Millisecond, cfg.Workflow.DebounceDelay, "unparseable values keep the default")
}

func TestLoadOverlaysFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caslkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
workflow:
  poll_interval: 2s
  debounce_delay: 100ms
collaborators:
  identity_url: http://identity.internal
redis:
  url: redis://cache:6379/0
`), 0o600))
	t.Setenv("CASL_CONFIG_FILE", path)
	t.Setenv("CASL_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.Workflow.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Workflow.DebounceDelay)
	assert.Equal(t, "http://identity.internal", cfg.Collaborators.IdentityURL)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.Redis.PoolSize, "unset keys keep defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caslkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pol_interval: 2s\n"), 0o600))
	t.Setenv("CASL_CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.RegulatedMode = true
	assert.Error(t, cfg.Validate(), "regulated mode needs a real signing key")

	cfg.Session.SigningKey = "prod-key"
	assert.NoError(t, cfg.Validate())

	cfg.Workflow.PollInterval = 0
	assert.Error(t, cfg.Validate())
}
