package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Riot.APIKey = "RGAPI-12345678-abcd-efgh"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "na1", cfg.Riot.Region)
	assert.Equal(t, 10*time.Second, cfg.Riot.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "DIAMOND", cfg.Collection.TargetRank)
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Riot.APIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("placeholder API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Riot.APIKey = "your_riot_api_key_here"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "placeholder")
	})

	t.Run("invalid region lists valid codes", func(t *testing.T) {
		cfg := validConfig()
		cfg.Riot.Region = "mars1"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mars1")
		assert.Contains(t, err.Error(), "na1")
		assert.Contains(t, err.Error(), "euw1")
		assert.Contains(t, err.Error(), "kr")
	})

	t.Run("region is case insensitive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Riot.Region = "EUW1"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("invalid target rank", func(t *testing.T) {
		cfg := validConfig()
		cfg.Collection.TargetRank = "WOOD"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target rank")
	})

	t.Run("non positive rate limits", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.RequestsPerSecond = 0
		cfg.RateLimit.RequestsPerWindow = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requests per second")
		assert.Contains(t, err.Error(), "requests per window")
	})

	t.Run("worker bounds", func(t *testing.T) {
		cfg := validConfig()
		cfg.Collection.Workers = 11
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-from-env")
	t.Setenv("RIOT_REGION", "euw1")
	t.Setenv("RIOTSTATS_REQUESTS_PER_SECOND", "10")
	t.Setenv("RIOTSTATS_TARGET_RANK", "challenger")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "RGAPI-from-env", cfg.Riot.APIKey)
	assert.Equal(t, "euw1", cfg.Riot.Region)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "CHALLENGER", cfg.Collection.TargetRank)
}

func TestPrefixedEnvWinsOverRiotEnv(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-generic")
	t.Setenv("RIOTSTATS_API_KEY", "RGAPI-specific")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "RGAPI-specific", cfg.Riot.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
riot:
  api_key: RGAPI-from-file
  region: kr
rate_limit:
  requests_per_second: 5
collection:
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "RGAPI-from-file", cfg.Riot.APIKey)
	assert.Equal(t, "kr", cfg.Riot.Region)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 2, cfg.Collection.Workers)
	// Untouched values keep their defaults.
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerWindow)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("riot:\n  api_key: RGAPI-file\n  region: kr\n"), 0600))

	t.Setenv("RIOTSTATS_API_KEY", "RGAPI-env")

	cfg, err := Load(path, map[string]interface{}{"region": "JP1"})
	require.NoError(t, err)

	// env beats file, flag beats file; region normalized to lower case
	assert.Equal(t, "RGAPI-env", cfg.Riot.APIKey)
	assert.Equal(t, "jp1", cfg.Riot.Region)
}

func TestLoadRejectsInvalidRegion(t *testing.T) {
	t.Setenv("RIOTSTATS_API_KEY", "RGAPI-env")
	t.Setenv("RIOTSTATS_REGION", "atlantis")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atlantis")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := validConfig()
	cfg.Riot.Region = "euw1"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Riot.Region, loaded.Riot.Region)
	assert.Equal(t, cfg.Riot.APIKey, loaded.Riot.APIKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "NOT SET", MaskKey(""))
	assert.Equal(t, "**********", MaskKey("short"))

	masked := MaskKey("RGAPI-12345678-abcd-efgh-ijkl")
	assert.Equal(t, "RGAPI-1234...", masked)
	assert.NotContains(t, masked, "ijkl")
}
