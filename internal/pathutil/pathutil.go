// Package pathutil canonicalizes filesystem paths to the single form the
// rest of the engine assumes: forward slashes, no long-path prefix, and
// (for prefix checks only) case-folded comparison.
//
// Architecture note, same split as the teacher's pkg/pathutil: indices
// store the Normalize()-d absolute form internally; output boundaries
// convert back to a root-relative path for display with ToRelative.
package pathutil

import (
	"path/filepath"
	"strings"
)

// winLongPathPrefix is the Windows extended-length path prefix; stripped so
// two spellings of the same path compare equal.
const winLongPathPrefix = `\\?\`

// Normalize converts p to forward slashes (backslashes included, on every
// platform), strips a Windows long-path prefix, and cleans it. It does not
// resolve symlinks or make it absolute.
func Normalize(p string) string {
	if p == "" {
		return p
	}
	p = strings.TrimPrefix(p, winLongPathPrefix)
	p = strings.ReplaceAll(p, `\`, "/")
	p = filepath.ToSlash(filepath.Clean(p))
	return p
}

// NormalizeAbs makes p absolute (relative to root when p is not already
// absolute) and normalizes the result.
func NormalizeAbs(p, root string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return Normalize(abs), nil
}

// ToRelative converts an absolute path to relative based on a root
// directory. Falls back to the original path if conversion fails, p is
// already relative, or p resolves outside root.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)
	rel, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return Normalize(absPath)
	}
	if strings.HasPrefix(rel, "..") {
		return Normalize(absPath)
	}
	return Normalize(rel)
}

// HasPrefixDir reports whether candidate is root itself or a proper
// subdirectory of it. Both arguments are normalized first; the comparison
// is case-folded (for case-insensitive filesystems) and always appends a
// trailing separator to root before the prefix check, so "/foo" never
// matches a candidate "/foobar".
func HasPrefixDir(candidate, root string) bool {
	c := foldCase(Normalize(candidate))
	r := foldCase(Normalize(root))
	if c == r {
		return true
	}
	if !strings.HasSuffix(r, "/") {
		r += "/"
	}
	return strings.HasPrefix(c, r)
}

func foldCase(s string) string {
	return strings.ToLower(s)
}
