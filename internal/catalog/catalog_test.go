package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsDenseIDs(t *testing.T) {
	c := New("/root")
	a := c.Insert(FileEntry{Path: "/root/a.go", Size: 10})
	b := c.Insert(FileEntry{Path: "/root/b.go", Size: 20})
	assert.EqualValues(t, 0, a)
	assert.EqualValues(t, 1, b)
	assert.Equal(t, 2, c.Len())
}

func TestRemoveTombstonesAndReuses(t *testing.T) {
	c := New("/root")
	a := c.Insert(FileEntry{Path: "/root/a.go"})
	id, ok := c.Remove("/root/a.go")
	require.True(t, ok)
	assert.Equal(t, a, id)
	assert.Equal(t, 0, c.Len())

	_, found := c.Lookup("/root/a.go")
	assert.False(t, found)

	reused := c.Insert(FileEntry{Path: "/root/c.go"})
	assert.Equal(t, a, reused, "tombstoned slot should be reused")
	assert.Equal(t, 1, c.Len())
}

func TestInsertSamePathReplacesEntry(t *testing.T) {
	c := New("/root")
	a := c.Insert(FileEntry{Path: "/root/a.go", Size: 1})
	b := c.Insert(FileEntry{Path: "/root/a.go", Size: 2})
	assert.Equal(t, a, b)
	e, ok := c.Get(a)
	require.True(t, ok)
	assert.EqualValues(t, 2, e.Size)
}

func TestGetTombstonedIsAbsent(t *testing.T) {
	c := New("/root")
	a := c.Insert(FileEntry{Path: "/root/a.go"})
	c.Remove("/root/a.go")
	_, ok := c.Get(a)
	assert.False(t, ok)
}

func TestSnapshotSkipsTombstones(t *testing.T) {
	c := New("/root")
	c.Insert(FileEntry{Path: "/root/a.go"})
	c.Insert(FileEntry{Path: "/root/b.go"})
	c.Remove("/root/a.go")
	snap := c.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "/root/b.go", snap[0].Path)
}
