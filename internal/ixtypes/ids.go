// Package ixtypes holds identifier and value types shared across the
// indexing and query packages so no package needs to import another's
// internals just to name an id.
package ixtypes

// FileID is a dense local index into an index's file table. Stable within
// one index build; deletions leave a tombstone rather than compacting ids.
type FileID uint32

// DefID is a dense index into the definition table, same stability contract
// as FileID.
type DefID uint32

// InvalidFileID marks a tombstoned or unassigned file slot.
const InvalidFileID = FileID(^uint32(0))

// InvalidDefID marks a removed or unassigned definition slot.
const InvalidDefID = DefID(^uint32(0))
