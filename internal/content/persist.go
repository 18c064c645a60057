package content

import (
	"time"

	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
	"github.com/pustynsky/search-index-sub001/internal/persist"
	"github.com/pustynsky/search-index-sub001/internal/trigram"
)

// Snapshot is the gob-serializable form of Index (spec §4.4): a faithful
// round-trip of every entity table in §3, including the trigram sidecar.
type Snapshot struct {
	Root            string
	CreatedAt       time.Time
	MaxAgeSecs      int64
	Extensions      []string
	MinTokenLen     int
	Files           []string
	FileTombstoned  map[ixtypes.FileID]bool
	FileTokenCounts []uint32
	TotalTokens     uint64
	Inverted        map[string][]Posting
	TrigramTokens   []string
	TrigramMap      map[string][]int
	TrigramDirty    bool
	PathToID        map[string]ixtypes.FileID
	Forward         map[ixtypes.FileID][]string
}

// ToSnapshot captures a point-in-time copy of idx for persistence.
func (idx *Index) ToSnapshot() Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Snapshot{
		Root:            idx.Root,
		CreatedAt:       idx.CreatedAt,
		MaxAgeSecs:      idx.MaxAgeSecs,
		Extensions:      append([]string(nil), idx.Extensions...),
		MinTokenLen:     idx.MinTokenLen,
		Files:           append([]string(nil), idx.files...),
		FileTombstoned:  copyBoolMap(idx.fileTombstoned),
		FileTokenCounts: append([]uint32(nil), idx.FileTokenCounts...),
		TotalTokens:     idx.TotalTokens,
		Inverted:        idx.inverted,
		TrigramTokens:   idx.Trigram.Tokens,
		TrigramMap:      idx.Trigram.TrigramMap,
		TrigramDirty:    idx.TrigramDirty,
		PathToID:        idx.PathToID,
		Forward:         idx.Forward,
	}
}

// FromSnapshot reconstructs an Index from a previously saved Snapshot.
func FromSnapshot(s Snapshot) *Index {
	idx := &Index{
		Root:            s.Root,
		CreatedAt:       s.CreatedAt,
		MaxAgeSecs:      s.MaxAgeSecs,
		Extensions:      s.Extensions,
		MinTokenLen:     s.MinTokenLen,
		files:           s.Files,
		fileTombstoned:  s.FileTombstoned,
		FileTokenCounts: s.FileTokenCounts,
		TotalTokens:     s.TotalTokens,
		inverted:        s.Inverted,
		Trigram:         &trigram.Index{Tokens: s.TrigramTokens, TrigramMap: s.TrigramMap},
		TrigramDirty:    s.TrigramDirty,
		PathToID:        s.PathToID,
		Forward:         s.Forward,
	}
	if idx.fileTombstoned == nil {
		idx.fileTombstoned = make(map[ixtypes.FileID]bool)
	}
	if idx.inverted == nil {
		idx.inverted = make(map[string][]Posting)
	}
	if idx.PathToID == nil {
		idx.PathToID = make(map[string]ixtypes.FileID)
	}
	if idx.Forward == nil {
		idx.Forward = make(map[ixtypes.FileID][]string)
	}
	if idx.Trigram.TrigramMap == nil {
		idx.Trigram.TrigramMap = make(map[string][]int)
	}
	return idx
}

// Save persists idx under a key derived from its root and extension set.
func (idx *Index) Save() error {
	key := persist.Key(idx.Root, idx.Extensions)
	return persist.Save("content", key, idx.ToSnapshot())
}

// Load loads a previously persisted content index for (root, extensions).
// Staleness is the caller's decision: a stale index loads successfully.
func Load(root string, extensions []string) (*Index, error) {
	key := persist.Key(root, extensions)
	var s Snapshot
	if err := persist.Load("content", key, &s); err != nil {
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
