// Package trigram implements the trigram extractor and vocabulary sidecar
// that accelerate substring queries over a token vocabulary (spec §4.2).
package trigram

import "sort"

// MinSubstringLen is the shortest query term for which the sidecar's
// intersect-then-verify path applies. Shorter terms fall back to a linear
// vocabulary scan, explicitly accepted as the only search path that scales
// with vocabulary size.
const MinSubstringLen = 3

// Extract returns the set of distinct overlapping 3-character windows of
// the already-lowercased string s. Tokens shorter than 3 runes have no
// trigrams.
func Extract(s string) []string {
	if len(s) < MinSubstringLen {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	var out []string
	for i := 0; i+3 <= len(s); i++ {
		g := s[i : i+3]
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Index is the sidecar: a sorted vocabulary plus trigram -> sorted vocab
// index postings. It is never updated in place: the content index marks it
// stale (TrigramDirty) whenever the vocabulary changes and rebuilds it with
// Build in EnsureTrigramFresh, which does nothing while it is fresh.
type Index struct {
	Tokens     []string         // sorted ascending
	TrigramMap map[string][]int // trigram -> sorted vocab indices
}

// NewIndex returns an empty sidecar.
func NewIndex() *Index {
	return &Index{TrigramMap: make(map[string][]int)}
}

// Build constructs the sidecar from a vocabulary. Per spec §4.2: the
// vocabulary is sorted first, then walked in order, so every posting list
// is naturally sorted and no explicit sort step is needed afterward.
func Build(vocabulary []string) *Index {
	idx := NewIndex()
	idx.Tokens = append(idx.Tokens, vocabulary...)
	sort.Strings(idx.Tokens)
	for i, t := range idx.Tokens {
		for _, g := range Extract(t) {
			idx.TrigramMap[g] = append(idx.TrigramMap[g], i)
		}
	}
	return idx
}

// Lookup resolves a query substring q to the set of concrete vocabulary
// tokens that contain it, per spec §4.2.
func (idx *Index) Lookup(q string) []string {
	if idx == nil {
		return nil
	}
	if len(q) < MinSubstringLen {
		var out []string
		for _, t := range idx.Tokens {
			if containsSubstring(t, q) {
				out = append(out, t)
			}
		}
		return out
	}
	grams := Extract(q)
	if len(grams) == 0 {
		return nil
	}
	candidates := idx.TrigramMap[grams[0]]
	if len(candidates) == 0 {
		return nil
	}
	for _, g := range grams[1:] {
		next := idx.TrigramMap[g]
		if len(next) == 0 {
			return nil
		}
		candidates = intersectSorted(candidates, next)
		if len(candidates) == 0 {
			return nil
		}
	}
	out := make([]string, 0, len(candidates))
	for _, vi := range candidates {
		if vi < 0 || vi >= len(idx.Tokens) {
			continue
		}
		if containsSubstring(idx.Tokens[vi], q) {
			out = append(out, idx.Tokens[vi])
		}
	}
	return out
}

// intersectSorted merges two ascending, duplicate-free int slices in O(a+b).
func intersectSorted(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func containsSubstring(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > len(s) {
		return false
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
