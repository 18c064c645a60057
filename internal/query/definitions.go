package query

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/definition"
	"github.com/pustynsky/search-index-sub001/internal/ixerr"
)

// DefinitionOptions configures a search_definitions lookup (spec §4.7.4).
type DefinitionOptions struct {
	Name      string
	Kind      ast.Kind
	Attribute string
	BaseType  string
	File      string // substring filter on path
	Parent    string // substring filter on parent name
	ExcludeDir []string

	ContainsLine int // used only when HasContainsLine is set; requires File to be set
	HasContainsLine bool

	MaxResults int // 0 = unlimited

	// FuzzyNameFallback enables Jaro-Winkler ranking of near-miss names
	// when an exact Name filter yields zero results (SPEC_FULL.md DOMAIN
	// STACK enrichment; off unless Name is non-empty and no exact hit).
	FuzzyNameFallback bool
	FuzzyMinScore     float32 // e.g. 0.75
}

// DefinitionMatch pairs a definition's index with its resolved path.
type DefinitionMatch struct {
	Index int
	Entry ast.DefinitionEntry
	Path  string
}

// Definitions implements spec §4.7.4: a set containsLine short-circuits
// first; otherwise ordered secondary-index intersection (kind -> attribute
// -> baseType -> name), then path/parent/excludeDir filters.
func Definitions(ix *definition.Index, opts DefinitionOptions) ([]DefinitionMatch, error) {
	if opts.HasContainsLine && opts.File == "" {
		return nil, ixerr.New(ixerr.InvalidArgument, "containsLine requires file")
	}

	if opts.HasContainsLine {
		fileID, ok := ix.FileIDFor(opts.File)
		if !ok {
			return nil, nil
		}
		ids := ix.ContainsLine(fileID, opts.ContainsLine)
		out := make([]DefinitionMatch, 0, len(ids))
		for _, idx := range ids {
			d, ok := ix.Get(idx)
			if !ok {
				continue
			}
			out = append(out, DefinitionMatch{Index: idx, Entry: d, Path: opts.File})
		}
		return out, nil
	}

	candidates := intersectDefinitionIndices(ix, opts)

	out := make([]DefinitionMatch, 0, len(candidates))
	for _, idx := range dedupeInts(candidates) {
		d, ok := ix.Get(idx)
		if !ok {
			continue
		}
		path, _ := ix.Path(d.FileID)
		if opts.File != "" && !strings.Contains(path, opts.File) {
			continue
		}
		if opts.Parent != "" && !strings.Contains(strings.ToLower(d.Parent), strings.ToLower(opts.Parent)) {
			continue
		}
		if matchesAny(opts.ExcludeDir, path) {
			continue
		}
		out = append(out, DefinitionMatch{Index: idx, Entry: d, Path: path})
	}

	if len(out) == 0 && opts.FuzzyNameFallback && opts.Name != "" {
		out = fuzzyNameFallback(ix, opts)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Entry.LineStart < out[j].Entry.LineStart
	})
	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out, nil
}

// intersectDefinitionIndices applies the filters present in opts as an
// ordered intersection: kind -> attribute -> baseType -> name, per
// spec §4.7.4. A filter left unset is skipped, not intersected against
// "all ids" (the first set filter present seeds the candidate set).
func intersectDefinitionIndices(ix *definition.Index, opts DefinitionOptions) []int {
	var sets [][]int
	if opts.Kind != "" {
		sets = append(sets, ix.ByKind(opts.Kind))
	}
	if opts.Attribute != "" {
		sets = append(sets, ix.ByAttribute(opts.Attribute))
	}
	if opts.BaseType != "" {
		sets = append(sets, ix.ByBaseType(opts.BaseType))
	}
	if opts.Name != "" {
		sets = append(sets, ix.ByName(opts.Name))
	}
	if len(sets) == 0 {
		return ix.AllIDs()
	}
	result := sets[0]
	for _, s := range sets[1:] {
		result = intersectInts(result, s)
	}
	return result
}

func intersectInts(a, b []int) []int {
	set := make(map[int]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	var out []int
	for _, v := range a {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

func dedupeInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// fuzzyNameFallback ranks every live definition's name against opts.Name by
// Jaro-Winkler similarity, keeping matches at or above FuzzyMinScore.
func fuzzyNameFallback(ix *definition.Index, opts DefinitionOptions) []DefinitionMatch {
	minScore := opts.FuzzyMinScore
	if minScore <= 0 {
		minScore = 0.75
	}
	var out []DefinitionMatch
	for _, idx := range ix.AllIDs() {
		d, ok := ix.Get(idx)
		if !ok {
			continue
		}
		score, err := edlib.StringsSimilarity(strings.ToLower(opts.Name), strings.ToLower(d.Name), edlib.JaroWinkler)
		if err != nil || score < minScore {
			continue
		}
		path, _ := ix.Path(d.FileID)
		out = append(out, DefinitionMatch{Index: idx, Entry: d, Path: path})
	}
	return out
}
