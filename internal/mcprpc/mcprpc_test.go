package mcprpc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/config"
)

// callTool mirrors the teacher's in-process test helper
// (internal/mcp/test_helpers.go's Server.CallTool): build a raw
// CallToolRequest directly against a handler, bypassing the stdio
// transport entirely.
func callTool(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	out["__isError"] = res.IsError
	return out
}

func buildTestEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"service.go": "package svc\n\nfunc Connect() error {\n\treturn dial()\n}\n",
		"dial.go":    "package svc\n\nfunc dial() error {\n\treturn nil\n}\n",
		"README.md":  "# service\n",
	}
	for rel, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644))
	}

	cfg := config.Defaults(root)
	e := NewEngine(cfg)
	require.NoError(t, e.BuildAll())
	return e
}

func TestSearchGrep_FindsMatchingFile(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchGrep, map[string]any{"terms": []string{"connect"}})
	assert.False(t, out["__isError"].(bool))
	summary := out["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["matchedFiles"])
}

func TestSearchGrep_MissingTermsErrors(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchGrep, map[string]any{})
	assert.True(t, out["__isError"].(bool))
	assert.Equal(t, "invalid_argument", out["kind"])
}

func TestSearchFind_MatchesByName(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchFind, map[string]any{"pattern": "dial"})
	assert.False(t, out["__isError"].(bool))
	files := out["files"].([]any)
	require.Len(t, files, 1)
}

func TestSearchFast_ORAcrossPatterns(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchFast, map[string]any{"pattern": "dial,README"})
	assert.False(t, out["__isError"].(bool))
	files := out["files"].([]any)
	assert.Len(t, files, 2)
}

func TestSearchInfo_ReportsReadiness(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchInfo, map[string]any{})
	summary := out["summary"].(map[string]any)
	assert.Equal(t, true, summary["contentReady"])
	assert.Equal(t, true, summary["definitionsReady"])
}

func TestSearchDefinitions_FindsByName(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchDefinitions, map[string]any{"name": "Connect"})
	assert.False(t, out["__isError"].(bool))
	defs := out["definitions"].([]any)
	require.Len(t, defs, 1)
	entry := defs[0].(map[string]any)
	assert.Equal(t, "Connect", entry["name"])
}

func TestSearchCallers_WalksDownToCallee(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchCallers, map[string]any{"method": "Connect", "direction": "down"})
	assert.False(t, out["__isError"].(bool))
	tree := out["callTree"].([]any)
	require.Len(t, tree, 1)
	root := tree[0].(map[string]any)
	assert.Equal(t, "dial", root["method"])
}

func TestSearchHelp_ListsToolsWithoutArg(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchHelp, map[string]any{})
	summary := out["summary"].(map[string]any)
	tools := summary["tools"].([]any)
	assert.Contains(t, tools, "search_grep")
}

func TestSearchHelp_UnknownToolErrors(t *testing.T) {
	e := buildTestEngine(t)
	out := callTool(t, e.handleSearchHelp, map[string]any{"tool": "nope"})
	assert.True(t, out["__isError"].(bool))
}

func TestResolveDir_RejectsOutOfScopePath(t *testing.T) {
	e := buildTestEngine(t)
	_, ok := resolveDir(e, "/etc")
	assert.False(t, ok)
}

func TestResolveDir_AllowsRelativeDotAsRoot(t *testing.T) {
	e := buildTestEngine(t)
	dir, ok := resolveDir(e, ".")
	assert.True(t, ok)
	assert.Equal(t, e.Cfg.Project.Root, filepath.Clean(dir))
}
