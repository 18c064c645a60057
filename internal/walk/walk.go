// Package walk is the filesystem walker collaborator spec §1 treats as
// external to the core engine: it enumerates files under a root, honoring
// .gitignore and an include/exclude glob set, and hands each one to the
// content/AST builders. Only its interface is load-bearing for the engine;
// its traversal strategy is not spec'd.
package walk

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pustynsky/search-index-sub001/internal/pathutil"
)

// File is one walked regular file.
type File struct {
	Path    string // normalized absolute path
	RelPath string // root-relative, forward-slashed
	Size    int64
	ModTime int64
}

// Options configures a Walk call.
type Options struct {
	Extensions      []string // e.g. {".go", ".ts"}; empty means "all"
	Include         []string // doublestar glob patterns, relative to root
	Exclude         []string // doublestar glob patterns, relative to root
	RespectGitignore bool
	MaxFileSize     int64 // 0 means unbounded
}

// Walk enumerates files under root matching opts, calling visit for each.
// Directories named .git are always skipped.
func Walk(root string, opts Options, visit func(File) error) error {
	root = pathutil.Normalize(root)
	ignorer := newGitignoreSet(root, opts.RespectGitignore)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if info.Name() == ".git" || ignorer.matchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignorer.match(rel) {
			return nil
		}
		if !matchesExtension(path, opts.Extensions) {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(opts.Include, rel) {
			return nil
		}
		if len(opts.Exclude) > 0 && matchesAny(opts.Exclude, rel) {
			return nil
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			return nil
		}

		return visit(File{
			Path:    pathutil.Normalize(path),
			RelPath: rel,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
	})
}

func matchesExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// gitignoreSet is a minimal, directory-scoped .gitignore matcher: it loads
// the root .gitignore (if present) and applies doublestar glob matching to
// each pattern line, which covers the common cases without re-implementing
// full git match semantics (negation, nested .gitignore precedence).
type gitignoreSet struct {
	patterns []string
	dirOnly  map[string]bool
}

func newGitignoreSet(root string, enabled bool) *gitignoreSet {
	g := &gitignoreSet{dirOnly: make(map[string]bool)}
	if !enabled {
		return g
	}
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return g
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		dirOnly := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		line = strings.TrimPrefix(line, "/")
		if !strings.Contains(line, "/") {
			line = "**/" + line
		}
		g.patterns = append(g.patterns, line)
		if dirOnly {
			g.dirOnly[line] = true
		}
	}
	return g
}

func (g *gitignoreSet) match(rel string) bool {
	for _, p := range g.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p+"/**", rel); ok {
			return true
		}
	}
	return false
}

func (g *gitignoreSet) matchDir(rel string) bool {
	return g.match(rel)
}
