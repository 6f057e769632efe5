package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Run from a directory with no config file.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "schedsync.db", cfg.Database.Path)
	assert.True(t, cfg.Reconcile.OverwriteExistingData)
	assert.False(t, cfg.Reconcile.IgnoreDuplicates)
	assert.False(t, cfg.Reconcile.PruneOrphans)
	assert.Empty(t, cfg.Reconcile.Handlers)
}

func TestLoadCaches(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedsync.toml")
	content := `
[database]
path = "/var/lib/schedsync/jobs.db"

[reconcile]
overwrite_existing_data = false
ignore_duplicates = true
handlers = ["reports.generate", "maintenance.vacuum"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/schedsync/jobs.db", cfg.Database.Path)
	assert.False(t, cfg.Reconcile.OverwriteExistingData)
	assert.True(t, cfg.Reconcile.IgnoreDuplicates)
	// Unspecified options keep their defaults.
	assert.False(t, cfg.Reconcile.PruneOrphans)
	assert.Equal(t, []string{"reports.generate", "maintenance.vacuum"}, cfg.Reconcile.Handlers)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedsync.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}
