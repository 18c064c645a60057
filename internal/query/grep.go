package query

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/surgebase/porter2"

	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
)

// GrepOptions configures one search_grep invocation (spec §4.7.1/§4.7.3).
type GrepOptions struct {
	Terms     []string
	Mode      string // "or" (default) or "and"
	Regex     bool
	Substring bool // default true at the tool layer; plain exact-token lookup when false
	Filter    PathFilter
	MaxResults int // 0 = unlimited

	// UseStemming gates an optional porter2 stemming pass over the OR-mode
	// term expansion (SPEC_FULL.md DOMAIN STACK); off by default so the
	// literal TF-IDF semantics of §4.7.1 hold whenever it's not requested.
	UseStemming bool
}

// GrepFileMatch is one file's aggregated score for a grep query.
type GrepFileMatch struct {
	FileID       ixtypes.FileID
	Path         string
	Score        float64
	Occurrences  int
	MatchedTerms []string
	Lines        []uint32
}

// GrepResult is the full outcome of one Grep call.
type GrepResult struct {
	Files   []GrepFileMatch
	Warning string

	// SearchMode and MatchedTokens mirror the original's summary fields:
	// "regex" for regex mode, "substring-and"/"substring-or" for substring
	// mode, and plain "and"/"or" otherwise. MatchedTokens is the deduped,
	// sorted set of concrete vocabulary tokens every term resolved to.
	SearchMode    string
	MatchedTokens []string
}

// termTokens is one raw term's resolved set of concrete vocabulary tokens.
type termTokens struct {
	raw    string
	tokens []string
}

// Grep implements spec §4.7.1 (regex/substring/plain token resolution, OR/AND
// merge, TF-IDF scoring) and §4.7.3's substring short-term warning.
func Grep(idx *content.Index, opts GrepOptions) (GrepResult, error) {
	if len(opts.Terms) == 0 {
		return GrepResult{}, ixerr.New(ixerr.InvalidArgument, "grep requires at least one term")
	}
	and := strings.EqualFold(opts.Mode, "and")

	resolved, warning, err := resolveTerms(idx, opts)
	if err != nil {
		return GrepResult{}, err
	}

	type acc struct {
		fileID      ixtypes.FileID
		score       float64
		occurrences int
		matched     map[string]bool
		lines       map[uint32]struct{}
	}
	byFile := make(map[ixtypes.FileID]*acc)
	n := idx.FileCount()

	for _, term := range resolved {
		for _, tok := range term.tokens {
			df := idx.DF(tok)
			if df == 0 {
				continue
			}
			idf := math.Log(float64(n) / float64(df))
			for _, p := range idx.Postings(tok) {
				path, ok := idx.Path(p.FileID)
				if !ok || !opts.Filter.Allows(path) {
					continue
				}
				a, ok := byFile[p.FileID]
				if !ok {
					a = &acc{fileID: p.FileID, matched: make(map[string]bool), lines: make(map[uint32]struct{})}
					byFile[p.FileID] = a
				}
				tc := idx.TokenCount(p.FileID)
				tf := 0.0
				if tc > 0 {
					tf = float64(len(p.Lines)) / float64(tc)
				}
				a.score += tf * idf
				a.occurrences++
				a.matched[term.raw] = true
				for _, l := range p.Lines {
					a.lines[l] = struct{}{}
				}
			}
		}
	}

	out := make([]GrepFileMatch, 0, len(byFile))
	for id, a := range byFile {
		if and && len(a.matched) < len(resolved) {
			continue
		}
		path, _ := idx.Path(id)
		lines := make([]uint32, 0, len(a.lines))
		for l := range a.lines {
			lines = append(lines, l)
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })
		terms := make([]string, 0, len(a.matched))
		for t := range a.matched {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		out = append(out, GrepFileMatch{
			FileID:       id,
			Path:         path,
			Score:        a.score,
			Occurrences:  a.occurrences,
			MatchedTerms: terms,
			Lines:        lines,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}

	modeWord := "or"
	if and {
		modeWord = "and"
	}
	searchMode := modeWord
	switch {
	case opts.Regex:
		searchMode = "regex"
	case opts.Substring:
		searchMode = "substring-" + modeWord
	}

	return GrepResult{
		Files:         out,
		Warning:       warning,
		SearchMode:    searchMode,
		MatchedTokens: allMatchedTokens(resolved),
	}, nil
}

// allMatchedTokens flattens every term's resolved tokens into one deduped,
// sorted vocabulary list, mirroring the original's
// all_matched_tokens.sort(); all_matched_tokens.dedup().
func allMatchedTokens(resolved []termTokens) []string {
	seen := make(map[string]bool)
	var out []string
	for _, term := range resolved {
		for _, tok := range term.tokens {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	sort.Strings(out)
	return out
}

func resolveTerms(idx *content.Index, opts GrepOptions) ([]termTokens, string, error) {
	var warning string
	out := make([]termTokens, 0, len(opts.Terms))

	switch {
	case opts.Regex:
		for _, raw := range opts.Terms {
			re, err := regexp.Compile("(?i)" + raw)
			if err != nil {
				return nil, "", ixerr.Wrap(ixerr.RegexCompile, err, "invalid regex %q", raw)
			}
			tokens := idx.Tokens(func(t string) bool { return re.MatchString(t) })
			out = append(out, termTokens{raw: raw, tokens: tokens})
		}
	case opts.Substring:
		for _, raw := range opts.Terms {
			if len(raw) < 4 {
				warning = "one or more terms is shorter than 4 characters; substring matching on short terms scans the full vocabulary and may be slow"
			}
			tokens := idx.SubstringLookup(strings.ToLower(raw))
			out = append(out, termTokens{raw: raw, tokens: tokens})
		}
	default:
		for _, raw := range opts.Terms {
			lower := strings.ToLower(raw)
			tokens := []string{lower}
			if opts.UseStemming && !strings.EqualFold(opts.Mode, "and") {
				tokens = append(tokens, stemVariant(lower))
			}
			out = append(out, termTokens{raw: raw, tokens: dedupeStrings(tokens)})
		}
	}
	return out, warning, nil
}

func stemVariant(token string) string {
	return porter2.Stem(token)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
