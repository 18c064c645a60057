package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/ast"
)

func sampleResult() ast.FileResult {
	return ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Widget", Kind: ast.KindClass, LineStart: 1, LineEnd: 20, BaseTypes: []string{"Base"}},
			{Name: "Run", Kind: ast.KindMethod, LineStart: 5, LineEnd: 10, Parent: "Widget", Attributes: []string{"Test"}},
		},
		MethodCalls: map[int][]ast.CallSite{
			1: {{MethodName: "Info", ReceiverType: "logger", Line: 7}},
		},
	}
}

func TestIndexFilePopulatesSecondaryIndices(t *testing.T) {
	ix := New("/root", []string{".go"})
	id := ix.IndexFile("/root/widget.go", sampleResult())

	assert.Len(t, ix.ByName("widget"), 1)
	assert.Len(t, ix.ByName("WIDGET"), 1)
	assert.Len(t, ix.ByKind(ast.KindMethod), 1)
	assert.Len(t, ix.ByAttribute("test"), 1)
	assert.Len(t, ix.ByBaseType("base"), 1)
	assert.Len(t, ix.ByFile(id), 2)
	assert.Equal(t, 2, ix.Len())
}

func TestRemoveFileDropsSecondaryEntries(t *testing.T) {
	ix := New("/root", nil)
	ix.IndexFile("/root/widget.go", sampleResult())
	ix.IndexFile("/root/other.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{{Name: "Other", Kind: ast.KindClass, LineStart: 1, LineEnd: 3}},
	})

	id, ok := ix.RemoveFile("/root/widget.go")
	require.True(t, ok)

	assert.Empty(t, ix.ByName("widget"))
	assert.Empty(t, ix.ByFile(id))
	assert.Empty(t, ix.ByKind(ast.KindMethod))
	assert.Equal(t, 1, ix.Len())

	_, found := ix.Path(id)
	assert.False(t, found)
}

func TestReindexReplacesDefinitions(t *testing.T) {
	ix := New("/root", nil)
	ix.IndexFile("/root/widget.go", sampleResult())
	ix.IndexFile("/root/widget.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{{Name: "Renamed", Kind: ast.KindClass, LineStart: 1, LineEnd: 2}},
	})

	assert.Empty(t, ix.ByName("widget"))
	assert.Len(t, ix.ByName("renamed"), 1)
}

func TestContainingMethodPicksInnermost(t *testing.T) {
	ix := New("/root", nil)
	id := ix.IndexFile("/root/widget.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Widget", Kind: ast.KindClass, LineStart: 1, LineEnd: 50},
			{Name: "Outer", Kind: ast.KindMethod, LineStart: 5, LineEnd: 40, Parent: "Widget"},
			{Name: "Inner", Kind: ast.KindMethod, LineStart: 10, LineEnd: 15, Parent: "Widget"},
		},
	})

	idx, def, ok := ix.ContainingMethod(id, 12)
	require.True(t, ok)
	assert.Equal(t, "Inner", def.Name)
	assert.NotZero(t, idx)
}

func TestContainsLineSortsInnermostFirst(t *testing.T) {
	ix := New("/root", nil)
	id := ix.IndexFile("/root/widget.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Widget", Kind: ast.KindClass, LineStart: 1, LineEnd: 50},
			{Name: "Outer", Kind: ast.KindMethod, LineStart: 5, LineEnd: 40, Parent: "Widget"},
			{Name: "Inner", Kind: ast.KindMethod, LineStart: 10, LineEnd: 15, Parent: "Widget"},
		},
	})

	ids := ix.ContainsLine(id, 12)
	require.Len(t, ids, 3)
	got, _ := ix.Get(ids[0])
	assert.Equal(t, "Inner", got.Name)
}

func TestCallSitesRetrieval(t *testing.T) {
	ix := New("/root", nil)
	ix.IndexFile("/root/widget.go", sampleResult())

	sites := ix.ByName("run")
	require.Len(t, sites, 1)
	calls := ix.CallSites(sites[0])
	require.Len(t, calls, 1)
	assert.Equal(t, "Info", calls[0].MethodName)
}

func TestFileIDReuseAfterTombstone(t *testing.T) {
	ix := New("/root", nil)
	id1 := ix.IndexFile("/root/a.go", ast.FileResult{})
	ix.RemoveFile("/root/a.go")
	id2 := ix.IndexFile("/root/b.go", ast.FileResult{})
	assert.Equal(t, id1, id2)
}
