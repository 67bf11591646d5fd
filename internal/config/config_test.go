package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
tokens:
  - ghp_alpha
  - ghp_beta
rotation_threshold: 1500
max_retries: 3
default_headers:
  Accept: application/vnd.github+json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghp_alpha", "ghp_beta"}, cfg.Tokens)
	assert.Equal(t, 1500, cfg.RotationThreshold)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "application/vnd.github+json", cfg.DefaultHeaders["Accept"])
	// defaults
	assert.Equal(t, "https://api.github.com", cfg.BaseURL)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"tokens":["ghp_a"],"port":9090}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 1000, cfg.RotationThreshold)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestValidateRejectsEmptyTokens(t *testing.T) {
	path := writeConfig(t, "config.yaml", `port: 8080`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tokens configured")
}

func TestValidateRejectsThresholdAtCeiling(t *testing.T) {
	cfg := Default()
	cfg.Tokens = []string{"ghp_a"}
	cfg.RotationThreshold = 5000
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota ceiling")
}

func TestValidateRejectsZeroRetries(t *testing.T) {
	cfg := Default()
	cfg.Tokens = []string{"ghp_a"}
	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRedisRequiresAddr(t *testing.T) {
	cfg := Default()
	cfg.Tokens = []string{"ghp_a"}
	cfg.UsageStorage = "redis"
	assert.Error(t, cfg.Validate())

	cfg.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GHPOOL_TOKENS", "ghp_x, ghp_y")
	t.Setenv("GHPOOL_ROTATION_THRESHOLD", "2000")
	t.Setenv("GHPOOL_DEBUG", "true")
	t.Setenv("GHPOOL_MAX_RETRIES", "nonsense")

	path := writeConfig(t, "config.yaml", `
tokens: [ghp_file]
rotation_threshold: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghp_x", "ghp_y"}, cfg.Tokens)
	assert.Equal(t, 2000, cfg.RotationThreshold)
	assert.True(t, cfg.Debug)
	// malformed integer is ignored, default survives
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoadMissingFileWithEnvTokens(t *testing.T) {
	t.Setenv("GHPOOL_TOKENS", "ghp_only")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ghp_only"}, cfg.Tokens)
}
