// Package definition holds the AST definition index (spec §3/§C8): the
// ordered definition table plus five secondary indices and the method-call
// graph, mirroring the locking and tombstone-reuse idiom of
// internal/content.Index.
package definition

import (
	"sort"
	"strings"
	"sync"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
	"github.com/pustynsky/search-index-sub001/internal/pathutil"
)

// Index is the definition index for one root directory.
type Index struct {
	mu sync.RWMutex

	Root       string
	Extensions []string

	files          []string // file_id -> normalized path
	fileTombstoned map[ixtypes.FileID]bool
	PathToID       map[string]ixtypes.FileID

	Definitions []ast.DefinitionEntry
	defTomb     map[int]bool

	// nameIndex/attributeIndex/baseTypeIndex key on the lowercased string
	// (spec §3's DefinitionIndex); kindIndex and fileIndex key on the
	// natural value.
	nameIndex      map[string][]int
	kindIndex      map[ast.Kind][]int
	attributeIndex map[string][]int
	baseTypeIndex  map[string][]int
	fileIndex      map[ixtypes.FileID][]int

	MethodCalls map[int][]ast.CallSite

	// ExtensionMethods maps a method name to the containing classes of its
	// static extension-method definitions (spec §4.6), letting the callee
	// resolver map x.Ext() back to its definition.
	ExtensionMethods map[string][]string
}

// New creates an empty definition index rooted at root.
func New(root string, extensions []string) *Index {
	return &Index{
		Root:             pathutil.Normalize(root),
		Extensions:       append([]string(nil), extensions...),
		fileTombstoned:   make(map[ixtypes.FileID]bool),
		PathToID:         make(map[string]ixtypes.FileID),
		defTomb:          make(map[int]bool),
		nameIndex:        make(map[string][]int),
		kindIndex:        make(map[ast.Kind][]int),
		attributeIndex:   make(map[string][]int),
		baseTypeIndex:    make(map[string][]int),
		fileIndex:        make(map[ixtypes.FileID][]int),
		MethodCalls:      make(map[int][]ast.CallSite),
		ExtensionMethods: make(map[string][]string),
	}
}

// EnsureFile assigns (or returns the existing) FileID for path, reusing a
// tombstoned slot when available.
func (ix *Index) EnsureFile(path string) ixtypes.FileID {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.ensureFileLocked(path)
}

func (ix *Index) ensureFileLocked(path string) ixtypes.FileID {
	if id, ok := ix.PathToID[path]; ok && !ix.fileTombstoned[id] {
		return id
	}
	for id, tomb := range ix.fileTombstoned {
		if tomb && int(id) < len(ix.files) {
			ix.files[id] = path
			ix.fileTombstoned[id] = false
			ix.PathToID[path] = id
			return id
		}
	}
	id := ixtypes.FileID(len(ix.files))
	ix.files = append(ix.files, path)
	ix.PathToID[path] = id
	return id
}

// FileIDFor returns the FileID for a previously-indexed path.
func (ix *Index) FileIDFor(path string) (ixtypes.FileID, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.PathToID[path]
	if !ok || ix.fileTombstoned[id] {
		return ixtypes.InvalidFileID, false
	}
	return id, true
}

// Path returns the stored path for a FileID.
func (ix *Index) Path(id ixtypes.FileID) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if int(id) >= len(ix.files) || ix.fileTombstoned[id] {
		return "", false
	}
	return ix.files[id], true
}

// IndexFile replaces any prior definitions for path with the ones in
// result (an ast.FileResult from the extractor), assigning def_ids and
// populating every secondary index.
func (ix *Index) IndexFile(path string, result ast.FileResult) ixtypes.FileID {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	id := ix.ensureFileLocked(path)
	ix.removeFileLocked(id)

	base := len(ix.Definitions)
	for _, def := range result.Definitions {
		def.FileID = id
		ix.Definitions = append(ix.Definitions, def)
	}

	for localIdx := range result.Definitions {
		ix.indexEntry(base + localIdx)
	}
	for localIdx, sites := range result.MethodCalls {
		ix.MethodCalls[base+localIdx] = sites
	}
	for _, em := range result.ExtensionMethods {
		ix.ExtensionMethods[em.MethodName] = append(ix.ExtensionMethods[em.MethodName], em.ContainingClass)
	}
	return id
}

func (ix *Index) indexEntry(defIdx int) {
	d := ix.Definitions[defIdx]
	lname := strings.ToLower(d.Name)
	ix.nameIndex[lname] = append(ix.nameIndex[lname], defIdx)
	ix.kindIndex[d.Kind] = append(ix.kindIndex[d.Kind], defIdx)
	for _, a := range d.Attributes {
		la := strings.ToLower(a)
		ix.attributeIndex[la] = append(ix.attributeIndex[la], defIdx)
	}
	for _, b := range d.BaseTypes {
		lb := strings.ToLower(b)
		ix.baseTypeIndex[lb] = append(ix.baseTypeIndex[lb], defIdx)
	}
	ix.fileIndex[d.FileID] = append(ix.fileIndex[d.FileID], defIdx)
}

// RemoveFile drops every definition belonging to path's FileID and
// tombstones the file slot. Returns (id, true) if the file was present.
func (ix *Index) RemoveFile(path string) (ixtypes.FileID, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	id, ok := ix.PathToID[path]
	if !ok {
		return ixtypes.InvalidFileID, false
	}
	ix.removeFileLocked(id)
	ix.fileTombstoned[id] = true
	return id, true
}

func (ix *Index) removeFileLocked(id ixtypes.FileID) {
	victims, ok := ix.fileIndex[id]
	if !ok {
		return
	}
	dead := make(map[int]bool, len(victims))
	for _, idx := range victims {
		dead[idx] = true
		ix.defTomb[idx] = true
		delete(ix.MethodCalls, idx)
	}
	delete(ix.fileIndex, id)
	pruneIndex(ix.nameIndex, dead)
	pruneKindIndex(ix.kindIndex, dead)
	pruneIndex(ix.attributeIndex, dead)
	pruneIndex(ix.baseTypeIndex, dead)
}

func pruneIndex(idx map[string][]int, dead map[int]bool) {
	for k, ids := range idx {
		filtered := filterDead(ids, dead)
		if len(filtered) == 0 {
			delete(idx, k)
		} else {
			idx[k] = filtered
		}
	}
}

func pruneKindIndex(idx map[ast.Kind][]int, dead map[int]bool) {
	for k, ids := range idx {
		filtered := filterDead(ids, dead)
		if len(filtered) == 0 {
			delete(idx, k)
		} else {
			idx[k] = filtered
		}
	}
}

func filterDead(ids []int, dead map[int]bool) []int {
	out := ids[:0]
	for _, id := range ids {
		if !dead[id] {
			out = append(out, id)
		}
	}
	return out
}

// Get returns the DefinitionEntry at defIdx if live.
func (ix *Index) Get(defIdx int) (ast.DefinitionEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if defIdx < 0 || defIdx >= len(ix.Definitions) || ix.defTomb[defIdx] {
		return ast.DefinitionEntry{}, false
	}
	return ix.Definitions[defIdx], true
}

// ByName returns live definition indices whose name matches n
// case-insensitively.
func (ix *Index) ByName(n string) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.liveCopy(ix.nameIndex[strings.ToLower(n)])
}

// ByKind returns live definition indices of kind k.
func (ix *Index) ByKind(k ast.Kind) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.liveCopy(ix.kindIndex[k])
}

// ByAttribute returns live definition indices carrying attribute a.
func (ix *Index) ByAttribute(a string) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.liveCopy(ix.attributeIndex[strings.ToLower(a)])
}

// ByBaseType returns live definition indices whose base_types include bt.
func (ix *Index) ByBaseType(bt string) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.liveCopy(ix.baseTypeIndex[strings.ToLower(bt)])
}

// ByFile returns live definition indices belonging to FileID id, in
// declaration order (the index's append order, since IndexFile appends in
// extractor-emitted order, which is itself parents-before-children).
func (ix *Index) ByFile(id ixtypes.FileID) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.liveCopy(ix.fileIndex[id])
}

func (ix *Index) liveCopy(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !ix.defTomb[id] {
			out = append(out, id)
		}
	}
	return out
}

// CallSites returns the call sites recorded for a method-like definition.
func (ix *Index) CallSites(defIdx int) []ast.CallSite {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.MethodCalls[defIdx]
}

func isContainerMethodKind(k ast.Kind) bool {
	return k == ast.KindMethod || k == ast.KindConstructor || k == ast.KindProperty
}

// ContainingMethod implements spec §4.7.6: among a file's live definitions,
// return the smallest-range method/constructor/property whose
// [line_start, line_end] contains line.
func (ix *Index) ContainingMethod(id ixtypes.FileID, line int) (int, ast.DefinitionEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	best := -1
	bestSize := -1
	for _, idx := range ix.fileIndex[id] {
		if ix.defTomb[idx] {
			continue
		}
		d := ix.Definitions[idx]
		if !isContainerMethodKind(d.Kind) {
			continue
		}
		if line < d.LineStart || line > d.LineEnd {
			continue
		}
		size := d.LineEnd - d.LineStart
		if best == -1 || size < bestSize {
			best, bestSize = idx, size
		}
	}
	if best == -1 {
		return 0, ast.DefinitionEntry{}, false
	}
	return best, ix.Definitions[best], true
}

// ContainsLine returns live definitions in file id whose range contains
// line, sorted by range size ascending ("innermost first"), per spec
// §4.7.4.
func (ix *Index) ContainsLine(id ixtypes.FileID, line int) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []int
	for _, idx := range ix.fileIndex[id] {
		if ix.defTomb[idx] {
			continue
		}
		d := ix.Definitions[idx]
		if line >= d.LineStart && line <= d.LineEnd {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si := ix.Definitions[out[i]].LineEnd - ix.Definitions[out[i]].LineStart
		sj := ix.Definitions[out[j]].LineEnd - ix.Definitions[out[j]].LineStart
		return si < sj
	})
	return out
}

// AllIDs returns every live definition index, in declaration order. Used by
// the query engine when no secondary-index filter narrows the candidate
// set at all (spec §4.7.4 "ordered intersection" with nothing to intersect
// falls back to every live definition).
func (ix *Index) AllIDs() []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]int, 0, len(ix.Definitions)-len(ix.defTomb))
	for i := range ix.Definitions {
		if !ix.defTomb[i] {
			out = append(out, i)
		}
	}
	return out
}

// Len reports the number of live definitions.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.Definitions) - len(ix.defTomb)
}

// WithReadLock runs fn while holding the read lock, for callers (the query
// engine) that need a consistent multi-field view across several of the
// above accessors.
func (ix *Index) WithReadLock(fn func()) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	fn()
}
