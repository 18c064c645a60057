// Package query implements the search algorithms over the content and
// definition indices: grep (§4.7.1), phrase (§4.7.2), substring (§4.7.3),
// definition lookup (§4.7.4), and the caller/callee tree walk
// (§4.7.5-§4.7.8).
package query

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter is the ext/excludeDir/exclude triple every query algorithm
// applies to candidate files.
type PathFilter struct {
	Ext        []string
	ExcludeDir []string
	Exclude    []string
}

// Allows reports whether path survives the filter.
func (f PathFilter) Allows(path string) bool {
	if len(f.Ext) > 0 {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !containsFold(f.Ext, ext) {
			return false
		}
	}
	dir := filepath.ToSlash(filepath.Dir(path))
	if matchesAny(f.ExcludeDir, dir) {
		return false
	}
	if matchesAny(f.Exclude, filepath.ToSlash(path)) {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// matchesAny reports whether any pattern matches s, either as a doublestar
// glob or, failing that, as a plain substring — the teacher's exclude
// filters accept both a glob ("**/vendor/**") and a bare directory name
// ("vendor").
func matchesAny(patterns []string, s string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if ok, err := doublestar.Match(p, s); err == nil && ok {
			return true
		}
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
