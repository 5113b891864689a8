package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-resilience/fault"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "go-resilience", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.True(t, cfg.Retry.Jitter)
	assert.False(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 10, cfg.Monitoring.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Monitoring.FlushInterval)
	assert.Equal(t, 5*time.Second, cfg.Monitoring.Timeout)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: exam-service
  env: staging
retry:
  max_attempts: 5
monitoring:
  enabled: true
  endpoint: https://telemetry.example.test/v1/errors
  api_key: abc123
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "exam-service", cfg.App.Name)
	assert.Equal(t, EnvStaging, cfg.App.Env)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, "https://telemetry.example.test/v1/errors", cfg.Monitoring.Endpoint)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
}

func TestLoadEnvOverridesAll(t *testing.T) {
	t.Setenv("RESILIENCE_APP__NAME", "env-service")
	t.Setenv("RESILIENCE_RETRY__MAX_ATTEMPTS", "7")
	t.Setenv("RESILIENCE_LOG__LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-service", cfg.App.Name)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "go-resilience", cfg.App.Name)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bad_env_name",
			env:  map[string]string{"RESILIENCE_APP__ENV": "qa"},
		},
		{
			name: "zero_attempts",
			env:  map[string]string{"RESILIENCE_RETRY__MAX_ATTEMPTS": "0"},
		},
		{
			name: "bad_log_level",
			env:  map[string]string{"RESILIENCE_LOG__LEVEL": "loud"},
		},
		{
			name: "monitoring_enabled_without_endpoint",
			env:  map[string]string{"RESILIENCE_MONITORING__ENABLED": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestRetryPolicyConversion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	p := cfg.RetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Contains(t, p.RetryableKinds, fault.KindNetwork)
	assert.Contains(t, p.RetryableKinds, fault.KindServiceUnavailable)
	assert.NoError(t, p.Validate())
}

func TestSinkConfigCarriesAppTags(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.App.Name = "learning-api"
	cfg.App.Env = EnvProduction
	cfg.Monitoring.Endpoint = "https://collector.example.test"

	sc := cfg.SinkConfig()
	assert.Equal(t, "learning-api", sc.ServiceName)
	assert.Equal(t, EnvProduction, sc.Environment)
	assert.Equal(t, "https://collector.example.test", sc.Endpoint)
	assert.Equal(t, 10, sc.BatchSize)
}
