package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/definition"
)

func newIndices(dir string) (*content.Index, *definition.Index) {
	c := content.New(dir, []string{".go"}, 0, 2)
	d := definition.New(dir, []string{".go"})
	return c, d
}

func TestApply_IndexesNewFile(t *testing.T) {
	dir := t.TempDir()
	c, d := newIndices(dir)
	u := New(c, d)

	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n\nfunc Hello() {}\n"), 0o644))

	require.NoError(t, u.Apply([]string{path}))

	assert.NotEmpty(t, c.Postings("hello"))
	_, found := d.FileIDFor(path)
	assert.True(t, found)
}

func TestApply_RemovesDeletedFile(t *testing.T) {
	dir := t.TempDir()
	c, d := newIndices(dir)
	u := New(c, d)

	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n\nfunc Hello() {}\n"), 0o644))
	require.NoError(t, u.Apply([]string{path}))
	require.NoError(t, os.Remove(path))
	require.NoError(t, u.Apply([]string{path}))

	assert.Empty(t, c.Postings("hello"))
	_, found := d.FileIDFor(path)
	assert.False(t, found)
}

func TestApply_BulkThresholdTriggersFullRebuild(t *testing.T) {
	dir := t.TempDir()
	c, d := newIndices(dir)
	u := New(c, d)
	u.BulkThreshold = 1

	rebuilt := false
	u.OnFullRebuild = func() error { rebuilt = true; return nil }

	p1 := filepath.Join(dir, "a.go")
	p2 := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(p1, []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("package a\n"), 0o644))

	require.NoError(t, u.Apply([]string{p1, p2}))
	assert.True(t, rebuilt)
	// the incremental path never ran, so neither file reached the index
	_, found := d.FileIDFor(p1)
	assert.False(t, found)
}

func TestApply_UnsupportedExtensionContentOnly(t *testing.T) {
	dir := t.TempDir()
	c, d := newIndices(dir)
	u := New(c, d)

	path := filepath.Join(dir, "readme.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))
	require.NoError(t, u.Apply([]string{path}))

	assert.NotEmpty(t, c.Postings("hello"))
	_, found := d.FileIDFor(path)
	assert.False(t, found)
}
