package mcprpc

import (
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/pathutil"
	"github.com/pustynsky/search-index-sub001/internal/response"
)

// jsonResult wraps an already-marshaled JSON document in the single
// TextContent shape every tool response uses, per the teacher's
// createJSONResponse in internal/mcp/response.go.
func jsonResult(body []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}
}

// errResult reports a tool-level failure with IsError set, per the MCP
// spec rationale the teacher's createErrorResponse documents: "errors that
// originate from the tool should be reported inside the result object...
// Otherwise, the LLM would not be able to see that an error occurred and
// self-correct."
func errResult(err error) *mcp.CallToolResult {
	kind := ixerr.Kind("internal")
	if e, ok := err.(*ixerr.Error); ok {
		kind = e.Kind
	}
	body, _ := json.Marshal(map[string]any{
		"error": err.Error(),
		"kind":  string(kind),
	})
	res := jsonResult(body)
	res.IsError = true
	return res
}

// outOfScope reports a dir parameter outside the configured project root
// (spec §6's security boundary).
func outOfScope(dir string) *mcp.CallToolResult {
	return errResult(ixerr.New(ixerr.OutOfScope, "dir %q is outside the indexed root", dir))
}

// notReady reports an index that hasn't completed its initial build yet.
func notReady(which string) *mcp.CallToolResult {
	return errResult(ixerr.New(ixerr.NotReady, "%s index is still building", which))
}

// resolveDir validates and normalizes an optional dir argument against the
// engine's project root, enforcing spec §6's security boundary. An empty
// dir means "the whole root".
func resolveDir(e *Engine, dir string) (string, bool) {
	root := e.Cfg.Project.Root
	if dir == "" {
		return root, true
	}
	abs, err := pathutil.NormalizeAbs(dir, root)
	if err != nil {
		return "", false
	}
	if !pathutil.HasPrefixDir(abs, root) {
		return "", false
	}
	return abs, true
}

// shape runs the standard response.Shape pass over data/summary, injecting
// search-time metrics measured by the caller (spec §4.8).
func shape(e *Engine, data, summary map[string]any, style response.Style, elapsed time.Duration) []byte {
	out, err := response.Shape(response.Payload{Data: data, Summary: summary}, response.ShapeOptions{
		MaxResponseBytes: e.Cfg.MaxResponseBytes,
		Style:            style,
		Metrics: response.Metrics{
			Enabled:      true,
			SearchTimeMs: float64(elapsed.Microseconds()) / 1000.0,
			IndexFiles:   e.Content.FileCount(),
			IndexTokens:  uint64(len(e.Content.Vocabulary())),
		},
	})
	if err != nil {
		out, _ = json.Marshal(map[string]any{"error": err.Error(), "summary": summary})
	}
	return out
}

func anySlice[T any](items []T, fn func(T) any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return out
}
