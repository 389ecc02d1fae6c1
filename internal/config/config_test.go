package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.True(t, cfg.Fetch.RespectRobots)
	assert.Equal(t, 45, cfg.Pipeline.DeadlineSecs)
	assert.Equal(t, "https://google.serper.dev", cfg.Serper.BaseURL)
	assert.Equal(t, "in", cfg.Serper.Country)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
fetch:
  respect_robots: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Fetch.RespectRobots)
	// Defaults still apply for unset values
	assert.Equal(t, 45, cfg.Pipeline.DeadlineSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CARTSCOPE_LOG_LEVEL", "warn")
	t.Setenv("CARTSCOPE_SERPER_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "env-key", cfg.Serper.Key)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CARTSCOPE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validConfig returns a Config with the fields validation inspects populated.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Serper.Key = "test-key"
	cfg.Fetch.TimeoutSecs = 15
	cfg.Pipeline.DeadlineSecs = 45
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateAnalysis_AllPresent(t *testing.T) {
	assert.NoError(t, validConfig().Validate("analysis"))
}

func TestValidateAnalysis_MissingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Serper.Key = ""

	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serper.key is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateDeadlineBounds(t *testing.T) {
	cfg := validConfig()

	cfg.Pipeline.DeadlineSecs = 0
	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline.deadline_secs must be between 5 and 300")

	cfg.Pipeline.DeadlineSecs = 301
	err = cfg.Validate("analysis")
	require.Error(t, err)

	cfg.Pipeline.DeadlineSecs = 300
	assert.NoError(t, cfg.Validate("analysis"))
}

func TestValidateTimeoutBounds(t *testing.T) {
	cfg := validConfig()

	cfg.Fetch.TimeoutSecs = 0
	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.timeout_secs must be between 1 and 120")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
