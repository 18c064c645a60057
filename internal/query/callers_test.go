package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/definition"
)

// buildFixture wires up a tiny two-file graph:
//
//	handler.go:  func (h *Handler) Serve() { h.svc.Run() }   // Serve calls Run
//	service.go:  func (s *Service) Run()   {}                 // Run's own line
//
// Serve's call site resolves to Run via receiver type "Service" (the
// parser would have tagged the receiver type from h.svc's declared type;
// here the fixture supplies it directly since there's no real parse).
func buildFixture(t *testing.T) (*content.Index, *definition.Index) {
	t.Helper()
	c := content.New("/repo", []string{".go"}, 0, 2)
	d := definition.New("/repo", []string{".go"})

	// handler.go names "Service" explicitly (the svc field's declared
	// type) so walkUp's relevant-file-id heuristic, which narrows
	// candidate callers to files that also mention the receiver type's
	// name, includes this file.
	handlerSrc := "type Handler struct {\n\tsvc Service\n}\n\nfunc (h *Handler) Serve() {\n\th.svc.Run()\n}\n"
	serviceSrc := "func (s *Service) Run() {\n\tdoWork()\n}\n"

	c.IndexFile("/repo/handler.go", handlerSrc)
	c.IndexFile("/repo/service.go", serviceSrc)

	d.IndexFile("/repo/handler.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Serve", Kind: ast.KindMethod, Parent: "Handler", LineStart: 5, LineEnd: 7},
		},
		MethodCalls: map[int][]ast.CallSite{
			0: {{MethodName: "Run", ReceiverType: "Service", Line: 6}},
		},
	})
	d.IndexFile("/repo/service.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Run", Kind: ast.KindMethod, Parent: "Service", LineStart: 1, LineEnd: 3},
		},
	})

	return c, d
}

func TestCallTree_Down_ResolvesCallSiteToDefinition(t *testing.T) {
	c, d := buildFixture(t)

	roots, err := CallTree(c, d, CallersOptions{
		Method:    "Serve",
		Class:     "Handler",
		Direction: "down",
	})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Run", roots[0].Method)
	assert.Equal(t, "Service", roots[0].Class)
	assert.Equal(t, "/repo/service.go", roots[0].Path)
}

func TestCallTree_Up_FindsContainingCaller(t *testing.T) {
	c, d := buildFixture(t)

	roots, err := CallTree(c, d, CallersOptions{
		Method:    "Run",
		Class:     "Service",
		Direction: "up",
	})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Serve", roots[0].Method)
	assert.Equal(t, "Handler", roots[0].Class)
}

func TestCallTree_Up_SkipsSelfDeclarationLine(t *testing.T) {
	c, d := buildFixture(t)

	// Run's own declaration line also contains the token "run" (the func
	// signature itself); walkUp must not treat that as a caller of itself.
	roots, err := CallTree(c, d, CallersOptions{
		Method:    "Run",
		Direction: "up",
	})
	require.NoError(t, err)
	for _, r := range roots {
		assert.False(t, r.Class == "Service" && r.Method == "Run")
	}
}

func TestCallTree_RequiresMethod(t *testing.T) {
	c, d := buildFixture(t)
	_, err := CallTree(c, d, CallersOptions{Direction: "up"})
	assert.Error(t, err)
}

func TestResolveCallSite_ExtensionMethodFallback(t *testing.T) {
	d := definition.New("/repo", []string{".go"})
	d.IndexFile("/repo/ext.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Ext", Kind: ast.KindMethod, Parent: "StringExtensions", LineStart: 1, LineEnd: 3},
		},
		ExtensionMethods: []ast.ExtensionMethod{
			{MethodName: "Ext", ContainingClass: "StringExtensions"},
		},
	})

	ids := resolveCallSite(d, ast.CallSite{MethodName: "Ext", ReceiverType: "string"})
	require.Len(t, ids, 1)
	entry, ok := d.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, "StringExtensions", entry.Parent)
}

func TestResolveCallSite_BaseTypeDispatch(t *testing.T) {
	d := definition.New("/repo", []string{".go"})
	d.IndexFile("/repo/base.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "Close", Kind: ast.KindMethod, Parent: "BaseResource", LineStart: 5, LineEnd: 6},
		},
	})
	d.IndexFile("/repo/impl.go", ast.FileResult{
		Definitions: []ast.DefinitionEntry{
			{Name: "FileResource", Kind: ast.KindClass, BaseTypes: []string{"BaseResource"}, LineStart: 1, LineEnd: 10},
		},
	})

	ids := resolveCallSite(d, ast.CallSite{MethodName: "Close", ReceiverType: "FileResource"})
	// Close is only declared on BaseResource; FileResource's base_types
	// includes it, so the base-type dispatch branch must still find it.
	require.Len(t, ids, 1)
	entry, _ := d.Get(ids[0])
	assert.Equal(t, "BaseResource", entry.Parent)
}
