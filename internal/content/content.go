// Package content implements the inverted content index with its trigram
// sidecar (spec §C5/§C6, §4.2-§4.4): construction, persistence support, and
// the primitives the query engine layers TF-IDF ranking on top of.
package content

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
	"github.com/pustynsky/search-index-sub001/internal/pathutil"
	"github.com/pustynsky/search-index-sub001/internal/tokenize"
	"github.com/pustynsky/search-index-sub001/internal/trigram"
)

// Posting records one (token, file) pair: the file and the sorted, unique,
// 1-based line numbers the token occurs on in that file.
type Posting struct {
	FileID ixtypes.FileID
	Lines  []uint32
}

// Index is the inverted content index for one root + extension set.
type Index struct {
	mu sync.RWMutex

	Root       string
	CreatedAt  time.Time
	MaxAgeSecs int64
	Extensions []string
	MinTokenLen int

	files           []string // file_id -> normalized path
	fileTombstoned  map[ixtypes.FileID]bool
	FileTokenCounts []uint32 // file_id -> total token occurrences in that file
	TotalTokens     uint64

	inverted map[string][]Posting // token -> postings

	Trigram      *trigram.Index
	TrigramDirty bool

	// Optional accelerators (spec's Open Question: left populated, not
	// required for correctness). PathToID speeds up file->id lookups from
	// the definition index; Forward speeds up "what tokens does file X
	// contain" without scanning the whole inverted map.
	PathToID map[string]ixtypes.FileID
	Forward  map[ixtypes.FileID][]string
}

// New returns an empty content index.
func New(root string, extensions []string, maxAgeSecs int64, minTokenLen int) *Index {
	if minTokenLen <= 0 {
		minTokenLen = tokenize.DefaultMinLength
	}
	exts := append([]string(nil), extensions...)
	sort.Strings(exts)
	return &Index{
		Root:           pathutil.Normalize(root),
		CreatedAt:      time.Now(),
		MaxAgeSecs:     maxAgeSecs,
		Extensions:     exts,
		MinTokenLen:    minTokenLen,
		fileTombstoned: make(map[ixtypes.FileID]bool),
		inverted:       make(map[string][]Posting),
		Trigram:        trigram.NewIndex(),
		TrigramDirty:   false,
		PathToID:       make(map[string]ixtypes.FileID),
		Forward:        make(map[ixtypes.FileID][]string),
	}
}

// FileCount returns N, the number of files used as the TF-IDF corpus size.
func (idx *Index) FileCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for id := range idx.files {
		if !idx.fileTombstoned[ixtypes.FileID(id)] {
			n++
		}
	}
	return n
}

// Path returns the normalized path for a file_id.
func (idx *Index) Path(id ixtypes.FileID) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if int(id) >= len(idx.files) || idx.fileTombstoned[id] {
		return "", false
	}
	return idx.files[id], true
}

// TokenCount returns file_token_counts[id].
func (idx *Index) TokenCount(id ixtypes.FileID) uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if int(id) >= len(idx.FileTokenCounts) {
		return 0
	}
	return idx.FileTokenCounts[id]
}

// Postings returns the posting list for a token (no false copies of the
// underlying slice; callers must not mutate it).
func (idx *Index) Postings(token string) []Posting {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.inverted[token]
}

// DF returns the document frequency (posting-list length) of a token.
func (idx *Index) DF(token string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.inverted[token])
}

// Vocabulary returns every distinct token in the inverted index.
func (idx *Index) Vocabulary() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.inverted))
	for t := range idx.inverted {
		out = append(out, t)
	}
	return out
}

// Tokens returns the tokens whose lowercased form matches pred, used by the
// regex grep path (spec §4.7.1) to expand a compiled pattern against
// inverted.keys().
func (idx *Index) Tokens(pred func(string) bool) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []string
	for t := range idx.inverted {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// EnsureFile allocates (or reuses) a file_id for path without indexing any
// content yet; used when the definition index needs a stable id that
// matches the content index's PathToID accelerator.
func (idx *Index) EnsureFile(path string) ixtypes.FileID {
	path = pathutil.Normalize(path)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.ensureFileLocked(path)
}

func (idx *Index) ensureFileLocked(path string) ixtypes.FileID {
	if id, ok := idx.PathToID[path]; ok && !idx.fileTombstoned[id] {
		return id
	}
	for id, tomb := range idx.fileTombstoned {
		if tomb && int(id) < len(idx.files) {
			idx.files[id] = path
			idx.fileTombstoned[id] = false
			idx.PathToID[path] = id
			if int(id) < len(idx.FileTokenCounts) {
				idx.FileTokenCounts[id] = 0
			}
			return id
		}
	}
	id := ixtypes.FileID(len(idx.files))
	idx.files = append(idx.files, path)
	idx.FileTokenCounts = append(idx.FileTokenCounts, 0)
	idx.PathToID[path] = id
	return id
}

// IndexFile tokenizes content line by line and appends its contributions
// to the inverted index under file_id (spec §4.3 steps 2-3). Safe to call
// concurrently with other IndexFile calls for different files; the caller
// is responsible for the single-writer serialization into the global map
// that spec §4.3 requires (Index itself still locks per call for safety).
func (idx *Index) IndexFile(path string, content string) ixtypes.FileID {
	path = pathutil.Normalize(path)
	lines := strings.Split(content, "\n")

	// Per-file scratch map: token -> sorted unique line numbers (1-based).
	scratch := make(map[string]map[uint32]struct{})
	var total uint32
	for i, line := range lines {
		lineNo := uint32(i + 1)
		for _, tok := range tokenize.Words(line, idx.MinTokenLen) {
			set, ok := scratch[tok]
			if !ok {
				set = make(map[uint32]struct{})
				scratch[tok] = set
			}
			set[lineNo] = struct{}{}
			total++
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	id := idx.ensureFileLocked(path)
	idx.FileTokenCounts[id] = total
	idx.TotalTokens += uint64(total)

	forwardTokens := make([]string, 0, len(scratch))
	for tok, lineSet := range scratch {
		lineList := make([]uint32, 0, len(lineSet))
		for ln := range lineSet {
			lineList = append(lineList, ln)
		}
		sort.Slice(lineList, func(i, j int) bool { return lineList[i] < lineList[j] })
		idx.inverted[tok] = append(idx.inverted[tok], Posting{FileID: id, Lines: lineList})
		forwardTokens = append(forwardTokens, tok)
	}
	sort.Strings(forwardTokens)
	idx.Forward[id] = forwardTokens
	idx.TrigramDirty = true
	return id
}

// RemoveFile implements the "remove" half of the incremental update
// contract (spec §4.5 step 1): strip every posting referencing path's
// file_id, dropping tokens whose posting list becomes empty, and zero its
// per-file counters. Returns the removed file_id, if the path was known.
func (idx *Index) RemoveFile(path string) (ixtypes.FileID, bool) {
	path = pathutil.Normalize(path)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	id, ok := idx.PathToID[path]
	if !ok || idx.fileTombstoned[id] {
		return 0, false
	}

	for tok, postings := range idx.inverted {
		kept := postings[:0]
		for _, p := range postings {
			if p.FileID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.inverted, tok)
		} else {
			idx.inverted[tok] = kept
		}
	}

	if int(id) < len(idx.FileTokenCounts) {
		idx.TotalTokens -= uint64(idx.FileTokenCounts[id])
		idx.FileTokenCounts[id] = 0
	}
	delete(idx.Forward, id)
	delete(idx.PathToID, path)
	idx.fileTombstoned[id] = true
	idx.TrigramDirty = true
	return id, true
}

// EnsureTrigramFresh implements the lazy-rebuild contract (spec §4.2): a
// double-checked read-then-write upgrade so concurrent callers never race
// on the rebuild.
func (idx *Index) EnsureTrigramFresh() {
	idx.mu.RLock()
	dirty := idx.TrigramDirty
	idx.mu.RUnlock()
	if !dirty {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.TrigramDirty {
		return // lost the race to another writer; already rebuilt
	}
	vocab := make([]string, 0, len(idx.inverted))
	for t := range idx.inverted {
		vocab = append(vocab, t)
	}
	idx.Trigram = trigram.Build(vocab)
	idx.TrigramDirty = false
}

// SubstringLookup resolves a query substring to concrete vocabulary tokens,
// rebuilding the trigram sidecar first if it is dirty.
func (idx *Index) SubstringLookup(q string) []string {
	idx.EnsureTrigramFresh()
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Trigram.Lookup(strings.ToLower(q))
}

// Stale reports whether now - CreatedAt > MaxAgeSecs. Informational only.
func (idx *Index) Stale(now time.Time) bool {
	if idx.MaxAgeSecs <= 0 {
		return false
	}
	return now.Sub(idx.CreatedAt) > time.Duration(idx.MaxAgeSecs)*time.Second
}

// WithReadLock runs fn while holding the index's read lock, for callers
// (phrase verification, showLines) that need several consistent reads in
// one pass without serializing through the exported per-call locking
// above.
func (idx *Index) WithReadLock(fn func()) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	fn()
}
