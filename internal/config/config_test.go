package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadParsesTOMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphdb.toml")
	content := `
[storage]
path = "/var/lib/graphdb"

[http]
port = 9090

[transaction]
default_timeout = "1m"
max_transactions = 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/graphdb", cfg.Storage.Path)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 50, cfg.Transaction.MaxTransactions)
	// Untouched sections keep their defaults.
	assert.Equal(t, "default", cfg.Cache.Preset)
}

func TestValidateRejectsZeroPort(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroCacheCapacity(t *testing.T) {
	cfg := Default()
	cfg.Cache.PlanCapacity = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvalidDurability(t *testing.T) {
	cfg := Default()
	cfg.Transaction.Durability = "eventually"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejects2PCWithNoDurability(t *testing.T) {
	cfg := Default()
	cfg.Transaction.Durability = "none"
	cfg.Transaction.TwoPhaseCommit = true
	assert.Error(t, cfg.Validate(), "2PC requires durable commit records")
}

func TestResolvePathPrefersFlagThenEnv(t *testing.T) {
	t.Setenv(EnvOverride, "/env/path.toml")
	assert.Equal(t, "/flag/path.toml", ResolvePath("/flag/path.toml"))
	assert.Equal(t, "/env/path.toml", ResolvePath(""))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
