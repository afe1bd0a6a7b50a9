package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscloud/nimbus-go/internal/config"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NIMBUS_REGION", "NIMBUS_SERVER", "NIMBUS_KEY", "NIMBUS_SECRET",
		"NIMBUS_TOKEN", "NIMBUS_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NIMBUS_KEY", "app-key")
	t.Setenv("NIMBUS_SECRET", "app-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, nimbus.ServerUS, cfg.Server)
	assert.Equal(t, "app-key", cfg.Key)
	assert.Equal(t, "app-secret", cfg.Secret)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRegionAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NIMBUS_REGION", "eu")
	t.Setenv("NIMBUS_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, nimbus.ServerEU, cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("NIMBUS_SERVER", "api.staging.internal")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "api.staging.internal", cfg.Server, "an explicit host wins over the region")
}

func TestLoadInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("NIMBUS_TIMEOUT", "sixty seconds")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NIMBUS_TIMEOUT")
}

func TestLoadFileOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("NIMBUS_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "nimbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
region: eu
secret: file-secret
timeout: 30s
log_level: warn
`), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, config.LoadFile(cfg, path))

	assert.Equal(t, nimbus.ServerEU, cfg.Server)
	assert.Equal(t, "env-key", cfg.Key, "file leaves unset fields alone")
	assert.Equal(t, "file-secret", cfg.Secret)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := &config.Config{}

	require.Error(t, config.LoadFile(cfg, filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [oops"), 0o600))
	require.Error(t, config.LoadFile(cfg, path))

	path = filepath.Join(t.TempDir(), "badtimeout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: forever"), 0o600))
	err := config.LoadFile(cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
