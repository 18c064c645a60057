package query

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/ixtypes"
	"github.com/pustynsky/search-index-sub001/internal/tokenize"
)

// PhraseOptions configures a phrase search (spec §4.7.2).
type PhraseOptions struct {
	Phrase     string
	Filter     PathFilter
	MaxResults int
	ShowLines  bool
}

// PhraseFileMatch is one file verified to contain the literal phrase.
type PhraseFileMatch struct {
	FileID ixtypes.FileID
	Path   string
	Lines  []uint32
}

// Phrase implements spec §4.7.2: verify each candidate file's raw content
// against the phrase, intersecting posting sets for the candidate set.
// Punctuation-bearing phrases (e.g. "ILogger<string>") get a literal,
// non-whitespace-flexible match, since the tokenizer drops the punctuation
// that's the whole point of the query; plain-word phrases (e.g. "pub fn")
// get the original's whitespace-flexible regex so line wraps and extra
// spacing between words still match.
func Phrase(idx *content.Index, opts PhraseOptions) ([]PhraseFileMatch, error) {
	tokens := tokenize.Words(opts.Phrase, idx.MinTokenLen)
	if len(tokens) == 0 {
		return nil, ixerr.New(ixerr.InvalidArgument, "phrase tokenizes to zero terms")
	}

	matches, err := buildPhraseMatcher(opts.Phrase, tokens)
	if err != nil {
		return nil, err
	}

	candidates := intersectPostingFiles(idx, tokens, opts.Filter)

	var out []PhraseFileMatch
	for _, id := range candidates {
		path, ok := idx.Path(id)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue // spec §7: phrase I/O failures are skipped silently
		}
		text := string(data)
		if !matches(text) {
			continue
		}
		match := PhraseFileMatch{FileID: id, Path: path}
		if opts.ShowLines {
			match.Lines = matchingLines(text, matches)
		}
		out = append(out, match)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out, nil
}

// buildPhraseMatcher returns the verification predicate for one phrase
// query. Phrases containing punctuation beyond letters/digits/underscore/
// whitespace are matched literally (case-insensitive substring); the
// tokenizer would otherwise strip the very punctuation the caller is
// searching for (e.g. the angle brackets in a generic type name) and a
// whitespace-joined regex would match the wrong, unrelated prose instead.
// Plain multi-word phrases keep the original's \s+-joined regex so a
// phrase can still span a line wrap or irregular spacing.
func buildPhraseMatcher(phrase string, tokens []string) (func(string) bool, error) {
	if hasPunctuation(phrase) {
		literal := strings.ToLower(strings.TrimSpace(phrase))
		return func(text string) bool {
			return strings.Contains(strings.ToLower(text), literal)
		}, nil
	}

	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = regexp.QuoteMeta(t)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(parts, `\s+`))
	if err != nil {
		return nil, ixerr.Wrap(ixerr.RegexCompile, err, "phrase regex build failed")
	}
	return re.MatchString, nil
}

// hasPunctuation reports whether phrase contains a rune other than a
// letter, digit, underscore, or whitespace.
func hasPunctuation(phrase string) bool {
	for _, r := range phrase {
		if unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			continue
		}
		return true
	}
	return false
}

// intersectPostingFiles returns the file ids present in every token's
// posting list (after path filtering), i.e. the phrase's candidate set.
func intersectPostingFiles(idx *content.Index, tokens []string, filter PathFilter) []ixtypes.FileID {
	var sets []map[ixtypes.FileID]bool
	for _, t := range tokens {
		set := make(map[ixtypes.FileID]bool)
		for _, p := range idx.Postings(t) {
			path, ok := idx.Path(p.FileID)
			if !ok || !filter.Allows(path) {
				continue
			}
			set[p.FileID] = true
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return nil
	}
	result := sets[0]
	for _, s := range sets[1:] {
		for id := range result {
			if !s[id] {
				delete(result, id)
			}
		}
	}
	out := make([]ixtypes.FileID, 0, len(result))
	for id := range result {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func matchingLines(text string, matches func(string) bool) []uint32 {
	var out []uint32
	for i, line := range strings.Split(text, "\n") {
		if matches(line) {
			out = append(out, uint32(i+1))
		}
	}
	return out
}
