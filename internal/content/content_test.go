package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFileLinesSortedAndDeduped(t *testing.T) {
	idx := New("/root", []string{".go"}, 0, 2)
	idx.IndexFile("/root/a.go", "foo bar\nfoo baz\nfoo")

	postings := idx.Postings("foo")
	require.Len(t, postings, 1)
	assert.Equal(t, []uint32{1, 2, 3}, postings[0].Lines)
}

func TestIndexFileTokenCountMatchesOccurrences(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	id := idx.IndexFile("/root/a.go", "foo foo bar\nbaz")
	assert.EqualValues(t, 4, idx.TokenCount(id))
}

func TestRemoveFileDropsEmptyPostingLists(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "uniquetoken here")
	idx.IndexFile("/root/b.go", "other stuff")

	_, ok := idx.RemoveFile("/root/a.go")
	require.True(t, ok)

	assert.Empty(t, idx.Postings("uniquetoken"))
	assert.NotEmpty(t, idx.Postings("other"))
}

func TestRemoveFileAdjustsTotalTokens(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "one two three")
	before := idx.TotalTokens
	idx.RemoveFile("/root/a.go")
	assert.Less(t, idx.TotalTokens, before)
	assert.EqualValues(t, 0, idx.TotalTokens)
}

func TestTrigramDirtyAfterIndexAndCleanAfterRebuild(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "httpclient")
	assert.True(t, idx.TrigramDirty)

	idx.EnsureTrigramFresh()
	assert.False(t, idx.TrigramDirty)
}

func TestSubstringLookupFindsToken(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "CatalogQueryManager")
	got := idx.SubstringLookup("query")
	assert.Contains(t, got, "catalogquerymanager")
}

func TestReindexingSameFileReplacesContributions(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "alpha")
	idx.RemoveFile("/root/a.go")
	idx.IndexFile("/root/a.go", "beta")

	assert.Empty(t, idx.Postings("alpha"))
	assert.NotEmpty(t, idx.Postings("beta"))
}

func TestFileCountExcludesTombstones(t *testing.T) {
	idx := New("/root", nil, 0, 2)
	idx.IndexFile("/root/a.go", "x")
	idx.IndexFile("/root/b.go", "y")
	idx.RemoveFile("/root/a.go")
	assert.Equal(t, 1, idx.FileCount())
}
