package definition

import (
	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
	"github.com/pustynsky/search-index-sub001/internal/persist"
)

// Snapshot is the gob-serializable form of Index (spec §4.4/§3): a faithful
// round-trip of the definition table, every secondary index, the
// method-call graph, and the extension-method map.
type Snapshot struct {
	Root       string
	Extensions []string

	Files          []string
	FileTombstoned map[ixtypes.FileID]bool
	PathToID       map[string]ixtypes.FileID

	Definitions []ast.DefinitionEntry
	DefTomb     map[int]bool

	NameIndex      map[string][]int
	KindIndex      map[ast.Kind][]int
	AttributeIndex map[string][]int
	BaseTypeIndex  map[string][]int
	FileIndex      map[ixtypes.FileID][]int

	MethodCalls      map[int][]ast.CallSite
	ExtensionMethods map[string][]string
}

// ToSnapshot captures a point-in-time copy of ix for persistence.
func (ix *Index) ToSnapshot() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Snapshot{
		Root:             ix.Root,
		Extensions:       append([]string(nil), ix.Extensions...),
		Files:            append([]string(nil), ix.files...),
		FileTombstoned:   copyBoolMap(ix.fileTombstoned),
		PathToID:         ix.PathToID,
		Definitions:      ix.Definitions,
		DefTomb:          copyIntBoolMap(ix.defTomb),
		NameIndex:        ix.nameIndex,
		KindIndex:        ix.kindIndex,
		AttributeIndex:   ix.attributeIndex,
		BaseTypeIndex:    ix.baseTypeIndex,
		FileIndex:        ix.fileIndex,
		MethodCalls:      ix.MethodCalls,
		ExtensionMethods: ix.ExtensionMethods,
	}
}

// FromSnapshot reconstructs an Index from a previously saved Snapshot.
func FromSnapshot(s Snapshot) *Index {
	ix := &Index{
		Root:             s.Root,
		Extensions:       s.Extensions,
		files:            s.Files,
		fileTombstoned:   s.FileTombstoned,
		PathToID:         s.PathToID,
		Definitions:      s.Definitions,
		defTomb:          s.DefTomb,
		nameIndex:        s.NameIndex,
		kindIndex:        s.KindIndex,
		attributeIndex:   s.AttributeIndex,
		baseTypeIndex:    s.BaseTypeIndex,
		fileIndex:        s.FileIndex,
		MethodCalls:      s.MethodCalls,
		ExtensionMethods: s.ExtensionMethods,
	}
	if ix.fileTombstoned == nil {
		ix.fileTombstoned = make(map[ixtypes.FileID]bool)
	}
	if ix.PathToID == nil {
		ix.PathToID = make(map[string]ixtypes.FileID)
	}
	if ix.defTomb == nil {
		ix.defTomb = make(map[int]bool)
	}
	if ix.nameIndex == nil {
		ix.nameIndex = make(map[string][]int)
	}
	if ix.kindIndex == nil {
		ix.kindIndex = make(map[ast.Kind][]int)
	}
	if ix.attributeIndex == nil {
		ix.attributeIndex = make(map[string][]int)
	}
	if ix.baseTypeIndex == nil {
		ix.baseTypeIndex = make(map[string][]int)
	}
	if ix.fileIndex == nil {
		ix.fileIndex = make(map[ixtypes.FileID][]int)
	}
	if ix.MethodCalls == nil {
		ix.MethodCalls = make(map[int][]ast.CallSite)
	}
	if ix.ExtensionMethods == nil {
		ix.ExtensionMethods = make(map[string][]string)
	}
	return ix
}

// Save persists ix under a key derived from its root (and extension set, so
// a differently-scoped definitions build over the same root doesn't
// collide).
func (ix *Index) Save() error {
	key := persist.Key(ix.Root, ix.Extensions)
	return persist.Save("definitions", key, ix.ToSnapshot())
}

// Load loads a previously persisted definition index for (root, extensions).
func Load(root string, extensions []string) (*Index, error) {
	key := persist.Key(root, extensions)
	var s Snapshot
	if err := persist.Load("definitions", key, &s); err != nil {
		return nil, err
	}
	return FromSnapshot(s), nil
}

func copyBoolMap(m map[ixtypes.FileID]bool) map[ixtypes.FileID]bool {
	out := make(map[ixtypes.FileID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntBoolMap(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
