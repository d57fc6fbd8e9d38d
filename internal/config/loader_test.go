package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Load:
// - Returns defaults when ~/.patience/config.yml doesn't exist (not an error)
// - Loads ~/.patience/config.yml when present
// - Explicit config file is loaded, and must exist
// - Environment variables override file values
// - Invalid values are rejected
// - Malformed YAML is an error

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_MissingFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "TEST_PATIENCE_PORT", cfg.Handoff.PortEnv)
	assert.Empty(t, cfg.Handoff.PortFile)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_HomeFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".patience", "config.yml"), `
wait:
  timeout: 45s
  poll_interval: 5ms
handoff:
  port_env: APP_READY_PORT
  port_file: /tmp/app.port
log:
  level: debug
`)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 5*time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "APP_READY_PORT", cfg.Handoff.PortEnv)
	assert.Equal(t, "/tmp/app.port", cfg.Handoff.PortFile)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "patience.yaml")
	writeConfig(t, path, `
wait:
  timeout: 2m
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Wait.Timeout)
	// Unset keys keep their defaults
	assert.Equal(t, time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "TEST_PATIENCE_PORT", cfg.Handoff.PortEnv)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("HOME", t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".patience", "config.yml"), `
wait:
  timeout: 45s
handoff:
  port_env: FILE_PORT
`)

	t.Setenv("PATIENCE_WAIT_TIMEOUT", "3s")
	t.Setenv("PATIENCE_WAIT_POLL_INTERVAL", "10ms")
	t.Setenv("PATIENCE_HANDOFF_PORT_ENV", "ENV_PORT")
	t.Setenv("PATIENCE_HANDOFF_PORT_FILE", "/env/port")
	t.Setenv("PATIENCE_LOG_LEVEL", "warn")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 10*time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "ENV_PORT", cfg.Handoff.PortEnv)
	assert.Equal(t, "/env/port", cfg.Handoff.PortFile)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATIENCE_WAIT_TIMEOUT", "-1s")

	_, err := Load("")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTimeout)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_MalformedYAML(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".patience", "config.yml"), "wait: [timeout: 3s\n")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
