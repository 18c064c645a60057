package query

import (
	"strings"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/definition"
	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
)

// CallersOptions configures a search_callers invocation (spec §4.7.5-§4.7.8).
type CallersOptions struct {
	Method    string
	Class     string // optional
	Direction string // "up" (callers, default) or "down" (callees)

	MaxDepth           int // default 3, max 10
	MaxCallersPerLevel int // default 10
	MaxTotalNodes      int // default 200
	ResolveInterfaces  bool

	Filter      PathFilter
	ExcludeFile []string
}

// CallNode is one node of the assembled caller/callee tree.
type CallNode struct {
	Method   string
	Class    string
	Path     string
	Line     uint32
	Depth    int
	Children []*CallNode
}

type walker struct {
	content *content.Index
	def     *definition.Index
	opts    CallersOptions
	visited map[string]bool
	emitted int
}

// CallTree implements §4.7.5 (direction=up) and §4.7.7 (direction=down).
func CallTree(contentIdx *content.Index, defIdx *definition.Index, opts CallersOptions) ([]*CallNode, error) {
	if opts.Method == "" {
		return nil, ixerr.New(ixerr.InvalidArgument, "search_callers requires method")
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}
	if opts.MaxDepth > 10 {
		opts.MaxDepth = 10
	}
	if opts.MaxCallersPerLevel <= 0 {
		opts.MaxCallersPerLevel = 10
	}
	if opts.MaxTotalNodes <= 0 {
		opts.MaxTotalNodes = 200
	}

	w := &walker{content: contentIdx, def: defIdx, opts: opts, visited: make(map[string]bool)}

	var roots []*CallNode
	if strings.EqualFold(opts.Direction, "down") {
		roots = w.walkDown(opts.Method, opts.Class, 0)
	} else {
		roots = w.walkUp(opts.Method, opts.Class, 0)
	}
	return dedupeRoots(roots), nil
}

func visitKey(class, method string) string {
	return strings.ToLower(class) + "\x00" + strings.ToLower(method)
}

// walkUp implements spec §4.7.5.
func (w *walker) walkUp(method, class string, depth int) []*CallNode {
	if depth >= w.opts.MaxDepth || w.emitted >= w.opts.MaxTotalNodes {
		return nil
	}
	key := visitKey(class, method)
	if w.visited[key] {
		return nil
	}
	w.visited[key] = true

	relevant := w.relevantFileIDs(class)
	postings := w.content.Postings(strings.ToLower(method))

	type found struct {
		class, method, path string
		line                uint32
	}
	var children []*CallNode
	seen := make(map[string]bool)

	for _, p := range postings {
		if relevant != nil && !relevant[p.FileID] {
			continue
		}
		path, ok := w.content.Path(p.FileID)
		if !ok || !w.allowed(path) {
			continue
		}
		defFileID, ok := w.def.FileIDFor(path)
		if !ok {
			continue
		}
		for _, line := range p.Lines {
			defIdx, containing, ok := w.def.ContainingMethod(defFileID, int(line))
			if !ok {
				continue
			}
			if strings.EqualFold(containing.Name, method) && containing.LineStart == int(line) {
				continue // self-reference: this is m's own declaration line
			}
			_ = defIdx
			f := found{class: containing.Parent, method: containing.Name, path: path, line: line}
			dedupKey := strings.ToLower(f.class) + "|" + strings.ToLower(f.method) + "|" + f.path
			if seen[dedupKey] {
				continue
			}
			seen[dedupKey] = true
			if len(children) >= w.opts.MaxCallersPerLevel {
				continue
			}
			node := &CallNode{Method: f.method, Class: f.class, Path: f.path, Line: f.line, Depth: depth + 1}
			w.emitted++
			node.Children = w.walkUp(f.method, "", depth+1)
			children = append(children, node)
		}
	}

	if depth == 0 && w.opts.ResolveInterfaces && class == "" {
		children = append(children, w.resolveInterfaceCallers(method)...)
	}

	return children
}

// resolveInterfaceCallers implements spec §4.7.5 step 5: at depth 0, find
// interfaces m belongs to and recurse into every implementing class.
func (w *walker) resolveInterfaceCallers(method string) []*CallNode {
	var out []*CallNode
	for _, idx := range w.def.ByName(method) {
		d, ok := w.def.Get(idx)
		if !ok || d.Parent == "" {
			continue
		}
		iface, ok := w.classEntry(d.Parent)
		if !ok || iface.Kind != ast.KindInterface {
			continue
		}
		for _, implIdx := range w.def.ByBaseType(d.Parent) {
			impl, ok := w.def.Get(implIdx)
			if !ok {
				continue
			}
			node := &CallNode{Method: method, Class: impl.Name, Depth: 1}
			if path, ok := w.def.Path(impl.FileID); ok {
				node.Path = path
			}
			w.emitted++
			node.Children = w.walkUp(method, impl.Name, 1)
			out = append(out, node)
		}
	}
	return out
}

// walkDown implements spec §4.7.7.
func (w *walker) walkDown(method, class string, depth int) []*CallNode {
	if depth >= w.opts.MaxDepth || w.emitted >= w.opts.MaxTotalNodes {
		return nil
	}
	key := visitKey(class, method)
	if w.visited[key] {
		return nil
	}
	w.visited[key] = true

	var ownDefs []int
	for _, idx := range w.def.ByName(method) {
		d, ok := w.def.Get(idx)
		if !ok || !isCallableKind(d.Kind) {
			continue
		}
		if class != "" && !strings.EqualFold(d.Parent, class) {
			continue
		}
		ownDefs = append(ownDefs, idx)
	}

	var children []*CallNode
	seen := make(map[string]bool)
	for _, defIdx := range ownDefs {
		for _, call := range w.def.CallSites(defIdx) {
			for _, targetIdx := range resolveCallSite(w.def, call) {
				target, ok := w.def.Get(targetIdx)
				if !ok {
					continue
				}
				path, _ := w.def.Path(target.FileID)
				if path != "" && !w.allowed(path) {
					continue
				}
				dedupKey := strings.ToLower(target.Parent) + "|" + strings.ToLower(target.Name)
				if seen[dedupKey] {
					continue
				}
				seen[dedupKey] = true
				if len(children) >= w.opts.MaxCallersPerLevel {
					continue
				}
				node := &CallNode{Method: target.Name, Class: target.Parent, Path: path, Line: uint32(target.LineStart), Depth: depth + 1}
				w.emitted++
				node.Children = w.walkDown(target.Name, "", depth+1)
				children = append(children, node)
			}
		}
	}
	return children
}

func isCallableKind(k ast.Kind) bool {
	return k == ast.KindMethod || k == ast.KindConstructor
}

// resolveCallSite implements spec §4.7.8.
func resolveCallSite(def *definition.Index, call ast.CallSite) []int {
	var candidates []int
	for _, idx := range def.ByName(call.MethodName) {
		d, ok := def.Get(idx)
		if ok && isCallableKind(d.Kind) {
			candidates = append(candidates, idx)
		}
	}
	if call.ReceiverType == "" {
		return candidates
	}

	var out []int
	receiver, hasReceiverClass := classEntryByName(def, call.ReceiverType)
	for _, idx := range candidates {
		d, _ := def.Get(idx)
		if strings.EqualFold(d.Parent, call.ReceiverType) {
			out = append(out, idx)
			continue
		}
		// Base-type/interface dispatch: the receiver's declared type lists
		// the candidate's containing class among its own base_types, e.g.
		// a FileResource (base_types: [BaseResource]) call to Close()
		// resolves to BaseResource.Close.
		if hasReceiverClass && containsFold(receiver.BaseTypes, d.Parent) {
			out = append(out, idx)
		}
	}

	// Extension-method fallback: x.Ext() where Ext is declared as a static
	// extension method of some other class (spec §4.6).
	for _, containingClass := range def.ExtensionMethods[call.MethodName] {
		for _, idx := range def.ByName(call.MethodName) {
			d, ok := def.Get(idx)
			if ok && strings.EqualFold(d.Parent, containingClass) {
				out = append(out, idx)
			}
		}
	}
	return dedupeInts(out)
}

func classEntryByName(def *definition.Index, name string) (ast.DefinitionEntry, bool) {
	if name == "" {
		return ast.DefinitionEntry{}, false
	}
	for _, idx := range def.ByName(name) {
		d, ok := def.Get(idx)
		if ok && isTypeKind(d.Kind) {
			return d, true
		}
	}
	return ast.DefinitionEntry{}, false
}

func (w *walker) classEntry(name string) (ast.DefinitionEntry, bool) {
	return classEntryByName(w.def, name)
}

func isTypeKind(k ast.Kind) bool {
	switch k {
	case ast.KindClass, ast.KindStruct, ast.KindInterface, ast.KindRecord, ast.KindEnum:
		return true
	}
	return false
}

// relevantFileIDs implements the step-2 relevant-file-id precomputation:
// union of content postings for the class name itself, "I"+class, and each
// interface in the class's base_types.
func (w *walker) relevantFileIDs(class string) map[ixtypes.FileID]bool {
	if class == "" {
		return nil
	}
	set := make(map[ixtypes.FileID]bool)
	addToken := func(tok string) {
		for _, p := range w.content.Postings(strings.ToLower(tok)) {
			set[p.FileID] = true
		}
	}
	addToken(class)
	addToken("i" + class)
	if entry, ok := w.classEntry(class); ok {
		for _, bt := range entry.BaseTypes {
			addToken(bt)
		}
	}
	return set
}

func (w *walker) allowed(path string) bool {
	if !w.opts.Filter.Allows(path) {
		return false
	}
	if matchesAny(w.opts.ExcludeFile, path) {
		return false
	}
	return true
}

func dedupeRoots(roots []*CallNode) []*CallNode {
	seen := make(map[string]bool)
	out := roots[:0]
	for _, r := range roots {
		key := strings.ToLower(r.Class) + "|" + strings.ToLower(r.Method) + "|" + r.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
