// Package finder implements the two filename/path-oriented tools spec §6
// lists alongside the content-index tools but that don't touch the content
// or definition indices at all: search_find (recursive name/content
// search with depth limiting) and search_fast (OR-pattern name search over
// files and directories). Neither needs a built index, so both remain
// available while content/definition indexing is still in progress (spec
// §6's readiness table carves search_find out for exactly that reason).
package finder

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pustynsky/search-index-sub001/internal/ixerr"
	"github.com/pustynsky/search-index-sub001/internal/pathutil"
)

// Entry is one matched filesystem entry.
type Entry struct {
	Path  string
	IsDir bool
}

// FindOptions configures search_find.
type FindOptions struct {
	Pattern    string
	Contents   bool // match Pattern against file contents instead of the name
	Regex      bool
	IgnoreCase bool
	MaxDepth   int // 0 = unlimited
	Ext        []string
}

// Find walks root looking for files (and, when !Contents, directories too)
// whose basename (or content, when Contents is set) matches Pattern.
func Find(root string, opts FindOptions) ([]Entry, error) {
	if opts.Pattern == "" {
		return nil, ixerr.New(ixerr.InvalidArgument, "search_find requires pattern")
	}
	matcher, err := newMatcher(opts.Pattern, opts.Regex, opts.IgnoreCase)
	if err != nil {
		return nil, err
	}

	root = pathutil.Normalize(root)
	var out []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if opts.MaxDepth > 0 && depthBelow(root, path) > opts.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if !opts.Contents && matcher(d.Name()) {
				out = append(out, Entry{Path: pathutil.Normalize(path), IsDir: true})
			}
			return nil
		}
		if len(opts.Ext) > 0 && !hasExt(path, opts.Ext) {
			return nil
		}
		if opts.Contents {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil
			}
			if matcher(string(data)) {
				out = append(out, Entry{Path: pathutil.Normalize(path)})
			}
			return nil
		}
		if matcher(d.Name()) {
			out = append(out, Entry{Path: pathutil.Normalize(path)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FastOptions configures search_fast.
type FastOptions struct {
	Patterns   []string // comma-separated OR, already split by the caller
	Regex      bool
	IgnoreCase bool
	DirsOnly   bool
	FilesOnly  bool
	Ext        []string
}

// Fast walks root, matching each entry's basename against any of Patterns
// (an OR across patterns, per spec §6's "pattern (comma-separated OR)").
func Fast(root string, opts FastOptions) ([]Entry, error) {
	if len(opts.Patterns) == 0 {
		return nil, ixerr.New(ixerr.InvalidArgument, "search_fast requires at least one pattern")
	}
	matchers := make([]func(string) bool, 0, len(opts.Patterns))
	for _, p := range opts.Patterns {
		m, err := newMatcher(p, opts.Regex, opts.IgnoreCase)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	anyMatch := func(s string) bool {
		for _, m := range matchers {
			if m(s) {
				return true
			}
		}
		return false
	}

	root = pathutil.Normalize(root)
	var out []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if !opts.FilesOnly && anyMatch(d.Name()) {
				out = append(out, Entry{Path: pathutil.Normalize(path), IsDir: true})
			}
			return nil
		}
		if opts.DirsOnly {
			return nil
		}
		if len(opts.Ext) > 0 && !hasExt(path, opts.Ext) {
			return nil
		}
		if anyMatch(d.Name()) {
			out = append(out, Entry{Path: pathutil.Normalize(path)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func newMatcher(pattern string, isRegex, ignoreCase bool) (func(string) bool, error) {
	if isRegex {
		expr := pattern
		if ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, ixerr.Wrap(ixerr.RegexCompile, err, "invalid regex %q", pattern)
		}
		return re.MatchString, nil
	}
	needle := pattern
	if ignoreCase {
		needle = strings.ToLower(needle)
	}
	return func(s string) bool {
		if ignoreCase {
			s = strings.ToLower(s)
		}
		return strings.Contains(s, needle)
	}, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range exts {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

// depthBelow returns how many path segments path is below root (1 for a
// direct child).
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}
