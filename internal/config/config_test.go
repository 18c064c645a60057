package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKDL_MissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDL_ParsesIndexAndWatchBlocks(t *testing.T) {
	dir := t.TempDir()
	kdl := `
index {
    max_file_size "5MB"
    max_total_size_mb 250
    max_file_count 500
}
watch {
    debounce_ms 750
    bulk_threshold 50
}
max_response_bytes 65536
include "**/*.go"
exclude "**/testdata/**"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ix.kdl"), []byte(kdl), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(5*1024*1024), cfg.maxFileSize)
	assert.Equal(t, int64(250), cfg.maxTotalSizeMB)
	assert.Equal(t, 500, cfg.maxFileCount)
	assert.Equal(t, 750, cfg.debounceMs)
	assert.Equal(t, 50, cfg.bulkThreshold)
	assert.Equal(t, 65536, cfg.maxResponseBytes)
	assert.Equal(t, []string{"**/*.go"}, cfg.include)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.exclude)
}

func TestLoadKDL_RelativeProjectRootResolvesAgainstKDLDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))
	kdl := `project { root "src" }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ix.kdl"), []byte(kdl), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, sub, cfg.root)
}

func TestApplyKDL_OnlyOverridesSetFields(t *testing.T) {
	cfg := Defaults("/proj")
	originalBulk := cfg.Watch.BulkThreshold

	applyKDL(cfg, &kdlConfig{maxFileCount: 42})

	assert.Equal(t, 42, cfg.Index.MaxFileCount)
	assert.Equal(t, originalBulk, cfg.Watch.BulkThreshold)
}

func TestApplyKDL_ExcludeAppendsRatherThanReplaces(t *testing.T) {
	cfg := Defaults("/proj")
	before := len(cfg.Exclude)

	applyKDL(cfg, &kdlConfig{exclude: []string{"**/generated/**"}})

	assert.Len(t, cfg.Exclude, before+1)
	assert.Contains(t, cfg.Exclude, "**/generated/**")
}

func TestApplyOverride_OnlySetPointersTakeEffect(t *testing.T) {
	cfg := Defaults("/proj")
	original := cfg.Watch.BulkThreshold

	bytes := 99999
	applyOverride(cfg, &tomlOverride{MaxResponseBytes: &bytes})

	assert.Equal(t, 99999, cfg.MaxResponseBytes)
	assert.Equal(t, original, cfg.Watch.BulkThreshold)
}

func TestLoadTOMLOverride_MissingFileReturnsNil(t *testing.T) {
	o, err := LoadTOMLOverride(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestLoadTOMLOverride_ParsesKnownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.toml")
	content := "max_response_bytes = 4096\ndebounce_ms = 250\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	o, err := LoadTOMLOverride(path)
	require.NoError(t, err)
	require.NotNil(t, o)
	require.NotNil(t, o.MaxResponseBytes)
	assert.Equal(t, 4096, *o.MaxResponseBytes)
	require.NotNil(t, o.DebounceMs)
	assert.Equal(t, 250, *o.DebounceMs)
	assert.Nil(t, o.BulkThreshold)
}
