package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/definition"
)

func buildDefIndex(t *testing.T) *definition.Index {
	t.Helper()
	d := definition.New("/repo", []string{".go"})
	d.IndexFile("/repo/service.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Service", Kind: ast.KindClass, LineStart: 1, LineEnd: 20, Attributes: []string{"Injectable"}},
			{Name: "Run", Kind: ast.KindMethod, Parent: "Service", LineStart: 5, LineEnd: 10},
			{Name: "Stop", Kind: ast.KindMethod, Parent: "Service", LineStart: 11, LineEnd: 15},
		},
	})
	d.IndexFile("/repo/worker.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Worker", Kind: ast.KindClass, BaseTypes: []string{"Service"}, LineStart: 1, LineEnd: 30},
			{Name: "Run", Kind: ast.KindMethod, Parent: "Worker", LineStart: 3, LineEnd: 8},
		},
	})
	return d
}

func TestDefinitions_FilterByName(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{Name: "Run"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestDefinitions_FilterByKindAndParent(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{Kind: ast.KindMethod, Parent: "Service"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, "Service", m.Entry.Parent)
	}
}

func TestDefinitions_FilterByBaseType(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{BaseType: "Service"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Worker", matches[0].Entry.Name)
}

func TestDefinitions_FilterByAttribute(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{Attribute: "Injectable"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Service", matches[0].Entry.Name)
}

func TestDefinitions_ContainsLineRequiresFile(t *testing.T) {
	d := buildDefIndex(t)
	_, err := Definitions(d, DefinitionOptions{HasContainsLine: true, ContainsLine: 6})
	assert.Error(t, err)
}

func TestDefinitions_ContainsLineInnermostFirst(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{
		File:            "/repo/service.go",
		HasContainsLine: true,
		ContainsLine:    6,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Run", matches[0].Entry.Name)
	assert.Equal(t, "Service", matches[1].Entry.Name)
}

func TestDefinitions_FuzzyNameFallback(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{
		Name:              "Workr", // typo of "Worker"
		FuzzyNameFallback: true,
	})
	require.NoError(t, err)
	var names []string
	for _, m := range matches {
		names = append(names, m.Entry.Name)
	}
	assert.Contains(t, names, "Worker")
}

func TestDefinitions_MaxResultsTruncates(t *testing.T) {
	d := buildDefIndex(t)
	matches, err := Definitions(d, DefinitionOptions{Kind: ast.KindMethod, MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
