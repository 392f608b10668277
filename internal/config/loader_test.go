package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.CacheCapacity)
	assert.Equal(t, 15*time.Second, cfg.CascadeDeadline)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listenAddr: \":9000\"\ncacheCapacity: 50\ncacheTTL: 5m\n",
	), 0o600))

	t.Setenv("STREAMLENS_CACHE_CAPACITY", "25")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	// File overrides default, env overrides file.
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 25, cfg.CacheCapacity)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STREAMLENS_CACHE_CAPACITY", "0")

	_, err := NewLoader("").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache capacity")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.Error(t, err)
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("STREAMLENS_TEST_INT", "not-a-number")
	assert.Equal(t, 7, ParseInt("STREAMLENS_TEST_INT", 7))

	t.Setenv("STREAMLENS_TEST_DUR", "soon")
	assert.Equal(t, time.Second, ParseDuration("STREAMLENS_TEST_DUR", time.Second))

	t.Setenv("STREAMLENS_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("STREAMLENS_TEST_BOOL", true))

	t.Setenv("STREAMLENS_TEST_BOOL", "no")
	assert.False(t, ParseBool("STREAMLENS_TEST_BOOL", true))
}

func TestValidateTimeoutOrdering(t *testing.T) {
	cfg := Defaults()
	cfg.StrategyTimeout = 20 * time.Second
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds cascade deadline")
}
