package mcprpc

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/finder"
	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/pathutil"
	"github.com/pustynsky/search-index-sub001/internal/query"
	"github.com/pustynsky/search-index-sub001/internal/response"
)

// grepParams mirrors grepSchema's properties.
type grepParams struct {
	Terms      []string `json:"terms"`
	Mode       string   `json:"mode"`
	Regex      bool     `json:"regex"`
	Substring  *bool    `json:"substring"`
	Dir        string   `json:"dir"`
	Ext        []string `json:"ext"`
	ExcludeDir []string `json:"excludeDir"`
	Exclude    []string `json:"exclude"`
	MaxResults int      `json:"maxResults"`
	CountOnly  bool     `json:"countOnly"`
}

func (e *Engine) handleSearchGrep(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	var p grepParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errResult(ixerr.Wrap(ixerr.InvalidArgument, err, "invalid arguments")), nil
	}
	if !e.ContentReady() {
		return notReady("content"), nil
	}
	if len(p.Terms) == 0 {
		return errResult(ixerr.New(ixerr.InvalidArgument, "search_grep requires terms")), nil
	}

	dir, ok := resolveDir(e, p.Dir)
	if !ok {
		return outOfScope(p.Dir), nil
	}

	substring := true
	if p.Substring != nil {
		substring = *p.Substring
	}

	result, err := query.Grep(e.Content, query.GrepOptions{
		Terms:      p.Terms,
		Mode:       p.Mode,
		Regex:      p.Regex,
		Substring:  substring,
		MaxResults: p.MaxResults,
		Filter: query.PathFilter{
			Ext:        p.Ext,
			ExcludeDir: p.ExcludeDir,
			Exclude:    p.Exclude,
		},
	})
	if err != nil {
		return errResult(err), nil
	}
	result.Files = filterUnderDir(result.Files, dir, func(f query.GrepFileMatch) string { return f.Path })

	summary := map[string]any{
		"matchedFiles": len(result.Files),
		"searchMode":   result.SearchMode,
		"matchedTokens": anySlice(result.MatchedTokens, func(t string) any {
			return t
		}),
	}
	if result.Warning != "" {
		summary["warning"] = result.Warning
	}
	data := map[string]any{}
	if p.CountOnly {
		data["count"] = len(result.Files)
	} else {
		data["files"] = anySlice(result.Files, func(f query.GrepFileMatch) any {
			return map[string]any{
				"path":         pathutil.ToRelative(f.Path, e.Cfg.Project.Root),
				"score":        f.Score,
				"occurrences":  f.Occurrences,
				"matchedTerms": f.MatchedTerms,
				"lines":        f.Lines,
			}
		})
	}
	return jsonResult(shape(e, data, summary, response.StyleGrep, time.Since(start))), nil
}

// findParams mirrors findSchema's properties.
type findParams struct {
	Pattern    string   `json:"pattern"`
	Dir        string   `json:"dir"`
	Contents   bool     `json:"contents"`
	Regex      bool     `json:"regex"`
	IgnoreCase bool     `json:"ignoreCase"`
	MaxDepth   int      `json:"maxDepth"`
	CountOnly  bool     `json:"countOnly"`
	Ext        []string `json:"ext"`
}

func (e *Engine) handleSearchFind(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	var p findParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errResult(ixerr.Wrap(ixerr.InvalidArgument, err, "invalid arguments")), nil
	}
	dir, ok := resolveDir(e, p.Dir)
	if !ok {
		return outOfScope(p.Dir), nil
	}

	entries, err := finder.Find(dir, finder.FindOptions{
		Pattern:    p.Pattern,
		Contents:   p.Contents,
		Regex:      p.Regex,
		IgnoreCase: p.IgnoreCase,
		MaxDepth:   p.MaxDepth,
		Ext:        p.Ext,
	})
	if err != nil {
		return errResult(err), nil
	}

	summary := map[string]any{"matched": len(entries)}
	data := map[string]any{}
	if p.CountOnly {
		data["count"] = len(entries)
	} else {
		data["files"] = entriesToAny(e, entries)
	}
	return jsonResult(shape(e, data, summary, response.StyleGrep, time.Since(start))), nil
}

// fastParams mirrors fastSchema's properties.
type fastParams struct {
	Pattern    string   `json:"pattern"`
	Dir        string   `json:"dir"`
	Ext        []string `json:"ext"`
	Regex      bool     `json:"regex"`
	IgnoreCase bool     `json:"ignoreCase"`
	DirsOnly   bool     `json:"dirsOnly"`
	FilesOnly  bool     `json:"filesOnly"`
	CountOnly  bool     `json:"countOnly"`
}

func (e *Engine) handleSearchFast(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	var p fastParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errResult(ixerr.Wrap(ixerr.InvalidArgument, err, "invalid arguments")), nil
	}
	dir, ok := resolveDir(e, p.Dir)
	if !ok {
		return outOfScope(p.Dir), nil
	}

	patterns := splitCSV(p.Pattern)
	entries, err := finder.Fast(dir, finder.FastOptions{
		Patterns:   patterns,
		Regex:      p.Regex,
		IgnoreCase: p.IgnoreCase,
		DirsOnly:   p.DirsOnly,
		FilesOnly:  p.FilesOnly,
		Ext:        p.Ext,
	})
	if err != nil {
		return errResult(err), nil
	}

	summary := map[string]any{"matched": len(entries)}
	data := map[string]any{}
	if p.CountOnly {
		data["count"] = len(entries)
	} else {
		data["files"] = entriesToAny(e, entries)
	}
	return jsonResult(shape(e, data, summary, response.StyleGrep, time.Since(start))), nil
}

func (e *Engine) handleSearchInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data := map[string]any{
		"root":             e.Cfg.Project.Root,
		"contentReady":     e.ContentReady(),
		"definitionsReady": e.DefReady(),
		"contentFiles":     e.Content.FileCount(),
		"contentTokens":    len(e.Content.Vocabulary()),
		"definitions":      e.Def.Len(),
		"catalogFiles":     e.Catalog.Len(),
		"maxResponseBytes": e.Cfg.MaxResponseBytes,
		"watch": map[string]any{
			"debounceMs":    e.Cfg.Watch.DebounceMs,
			"bulkThreshold": e.Cfg.Watch.BulkThreshold,
		},
	}
	body, _ := json.Marshal(map[string]any{"summary": data})
	return jsonResult(body), nil
}

// reindexParams mirrors reindexSchema's properties.
type reindexParams struct {
	Full bool `json:"full"`
}

func (e *Engine) handleSearchReindex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := e.rebuildAll(); err != nil {
		return errResult(ixerr.Wrap(ixerr.IOFailure, err, "reindex failed")), nil
	}
	body, _ := json.Marshal(map[string]any{"summary": map[string]any{
		"contentFiles": e.Content.FileCount(),
		"definitions":  e.Def.Len(),
	}})
	return jsonResult(body), nil
}

func (e *Engine) handleSearchReindexDefinitions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := e.rebuildAll(); err != nil {
		return errResult(ixerr.Wrap(ixerr.IOFailure, err, "reindex failed")), nil
	}
	body, _ := json.Marshal(map[string]any{"summary": map[string]any{
		"definitions": e.Def.Len(),
	}})
	return jsonResult(body), nil
}

// definitionsParams mirrors definitionsSchema's properties.
type definitionsParams struct {
	Name              string   `json:"name"`
	Kind              string   `json:"kind"`
	Attribute         string   `json:"attribute"`
	BaseType          string   `json:"baseType"`
	File              string   `json:"file"`
	Parent            string   `json:"parent"`
	ExcludeDir        []string `json:"excludeDir"`
	ContainsLine      *int     `json:"containsLine"`
	MaxResults        int      `json:"maxResults"`
	IncludeBody       bool     `json:"includeBody"`
	MaxBodyLines      int      `json:"maxBodyLines"`
	FuzzyNameFallback bool     `json:"fuzzyNameFallback"`
}

func (e *Engine) handleSearchDefinitions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	var p definitionsParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errResult(ixerr.Wrap(ixerr.InvalidArgument, err, "invalid arguments")), nil
	}
	if !e.DefReady() {
		return notReady("definition"), nil
	}

	opts := query.DefinitionOptions{
		Name:              p.Name,
		Kind:              ast.Kind(p.Kind),
		Attribute:         p.Attribute,
		BaseType:          p.BaseType,
		File:              p.File,
		Parent:            p.Parent,
		ExcludeDir:        p.ExcludeDir,
		MaxResults:        p.MaxResults,
		FuzzyNameFallback: p.FuzzyNameFallback,
	}
	if p.ContainsLine != nil {
		opts.ContainsLine = *p.ContainsLine
		opts.HasContainsLine = true
	}

	matches, err := query.Definitions(e.Def, opts)
	if err != nil {
		return errResult(err), nil
	}

	summary := map[string]any{"matched": len(matches)}
	data := map[string]any{
		"definitions": anySlice(matches, func(m query.DefinitionMatch) any {
			out := map[string]any{
				"name":      m.Entry.Name,
				"kind":      string(m.Entry.Kind),
				"path":      pathutil.ToRelative(m.Path, e.Cfg.Project.Root),
				"lineStart": m.Entry.LineStart,
				"lineEnd":   m.Entry.LineEnd,
				"parent":    m.Entry.Parent,
				"signature": m.Entry.Signature,
			}
			if p.IncludeBody {
				out["body"] = readBody(m.Path, m.Entry.LineStart, m.Entry.LineEnd, p.MaxBodyLines)
			}
			return out
		}),
	}
	return jsonResult(shape(e, data, summary, response.StyleDefinition, time.Since(start))), nil
}

// callersParams mirrors callersSchema's properties.
type callersParams struct {
	Method             string   `json:"method"`
	Class              string   `json:"class"`
	Direction          string   `json:"direction"`
	MaxDepth           int      `json:"maxDepth"`
	MaxCallersPerLevel int      `json:"maxCallersPerLevel"`
	MaxTotalNodes      int      `json:"maxTotalNodes"`
	ResolveInterfaces  bool     `json:"resolveInterfaces"`
	Dir                string   `json:"dir"`
	Ext                []string `json:"ext"`
	ExcludeFile        []string `json:"excludeFile"`
}

func (e *Engine) handleSearchCallers(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	var p callersParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errResult(ixerr.Wrap(ixerr.InvalidArgument, err, "invalid arguments")), nil
	}
	if !e.ContentReady() || !e.DefReady() {
		return notReady("content/definition"), nil
	}

	var dir string
	if p.Dir != "" {
		var ok bool
		dir, ok = resolveDir(e, p.Dir)
		if !ok {
			return outOfScope(p.Dir), nil
		}
	}

	tree, err := query.CallTree(e.Content, e.Def, query.CallersOptions{
		Method:             p.Method,
		Class:              p.Class,
		Direction:          p.Direction,
		MaxDepth:           p.MaxDepth,
		MaxCallersPerLevel: p.MaxCallersPerLevel,
		MaxTotalNodes:      p.MaxTotalNodes,
		ResolveInterfaces:  p.ResolveInterfaces,
		ExcludeFile:        p.ExcludeFile,
		Filter: query.PathFilter{
			Ext: p.Ext,
		},
	})
	if err != nil {
		return errResult(err), nil
	}
	if dir != "" {
		tree = filterUnderDir(tree, dir, func(n *query.CallNode) string { return n.Path })
	}

	summary := map[string]any{"roots": len(tree)}
	data := map[string]any{"callTree": anySlice(tree, func(n *query.CallNode) any { return nodeToAny(e, n) })}
	return jsonResult(shape(e, data, summary, response.StyleGrep, time.Since(start))), nil
}

// helpParams mirrors helpSchema's properties.
type helpParams struct {
	Tool string `json:"tool"`
}

func (e *Engine) handleSearchHelp(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p helpParams
	_ = json.Unmarshal(req.Params.Arguments, &p)

	if p.Tool == "" {
		body, _ := json.Marshal(map[string]any{"summary": map[string]any{"tools": toolNames()}})
		return jsonResult(body), nil
	}
	desc, ok := toolHelp[p.Tool]
	if !ok {
		return errResult(ixerr.New(ixerr.InvalidArgument, "unknown tool %q", p.Tool)), nil
	}
	body, _ := json.Marshal(map[string]any{"summary": map[string]any{"tool": p.Tool, "help": desc}})
	return jsonResult(body), nil
}

func toolNames() []string {
	names := make([]string, 0, len(toolHelp))
	for n := range toolHelp {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func entriesToAny(e *Engine, entries []finder.Entry) []any {
	return anySlice(entries, func(en finder.Entry) any {
		return map[string]any{
			"path":  pathutil.ToRelative(en.Path, e.Cfg.Project.Root),
			"isDir": en.IsDir,
		}
	})
}

func nodeToAny(e *Engine, n *query.CallNode) map[string]any {
	return map[string]any{
		"method":   n.Method,
		"class":    n.Class,
		"path":     pathutil.ToRelative(n.Path, e.Cfg.Project.Root),
		"line":     n.Line,
		"depth":    n.Depth,
		"children": anySlice(n.Children, func(c *query.CallNode) any { return nodeToAny(e, c) }),
	}
}

// filterUnderDir keeps only the items whose path (via pathOf) falls under
// dir, per spec §6's dir-scoping for search_grep/search_callers. query's
// PathFilter only expresses exclusions, not a "must be under" constraint,
// so dir-scoping is applied here instead of threading it through Grep/CallTree.
func filterUnderDir[T any](items []T, dir string, pathOf func(T) string) []T {
	out := items[:0]
	for _, it := range items {
		if pathutil.HasPrefixDir(pathOf(it), dir) {
			out = append(out, it)
		}
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readBody reads lineStart..lineEnd (1-based, inclusive) from path,
// capping the returned line count at maxLines (0 = unlimited).
func readBody(path string, lineStart, lineEnd, maxLines int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	if lineStart < 1 {
		lineStart = 1
	}
	if lineEnd > len(lines) {
		lineEnd = len(lines)
	}
	if lineStart > lineEnd {
		return ""
	}
	body := lines[lineStart-1 : lineEnd]
	if maxLines > 0 && len(body) > maxLines {
		body = body[:maxLines]
	}
	return strings.Join(body, "\n")
}
