package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxylab/internal/cache"
)

func TestLoadAppliesDefaultsWhenOnlyPortGiven(t *testing.T) {
	cfg, err := Load([]string{"9000"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, cache.MaxCacheSize, cfg.CacheSize)
	assert.Equal(t, cache.MaxObjectSize, cfg.ObjectSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiresExactlyOnePositionalArg(t *testing.T) {
	_, err := Load([]string{})
	assert.Error(t, err)

	_, err = Load([]string{"9000", "extra"})
	assert.Error(t, err)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{"-cache-size", "2048", "-object-size", "512", "-log-level", "debug", "9000"})
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.CacheSize)
	assert.Equal(t, 512, cfg.ObjectSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxy.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_size = 4096
log_level = "warn"
`), 0o600))

	cfg, err := Load([]string{"-config", path, "-log-level", "error", "9000"})
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.CacheSize, "value only set in the file should apply")
	assert.Equal(t, "error", cfg.LogLevel, "flag should win over the file's value")
	assert.Equal(t, cache.MaxObjectSize, cfg.ObjectSize, "unset-anywhere field keeps its default")
}

func TestLoadRejectsUnreadableConfigFile(t *testing.T) {
	_, err := Load([]string{"-config", "/nonexistent/proxy.toml", "9000"})
	assert.Error(t, err)
}
