package definition

import (
	"os"
	"path/filepath"

	"github.com/pustynsky/search-index-sub001/internal/ast"
	"github.com/pustynsky/search-index-sub001/internal/walk"
)

// BuildOptions configures a full definition-index build, mirroring
// content.BuildOptions (spec §4.6/§C11): the same walk filters, applied
// only to files with a registered tree-sitter grammar.
type BuildOptions struct {
	Extensions       []string
	Include          []string
	Exclude          []string
	RespectGitignore bool
	MaxFileSize      int64
}

// Build walks root and parses every file whose extension has a registered
// grammar, feeding each FileResult into a fresh Index. Parse errors are
// collected rather than aborting the build, so one malformed file doesn't
// block indexing the rest of the tree (spec §4.6's per-file ParseError
// field exists for exactly this).
func Build(root string, opts BuildOptions) (*Index, []error) {
	ix := New(root, opts.Extensions)

	var parseErrs []error
	err := walk.Walk(root, walk.Options{
		Extensions:       opts.Extensions,
		Include:          opts.Include,
		Exclude:          opts.Exclude,
		RespectGitignore: opts.RespectGitignore,
		MaxFileSize:      opts.MaxFileSize,
	}, func(f walk.File) error {
		ext := filepath.Ext(f.Path)
		if _, ok := ast.ForExtension(ext); !ok {
			return nil
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil // best-effort, same as content.Build
		}
		result := ast.ExtractFile(ext, data)
		if result.ParseError != nil {
			parseErrs = append(parseErrs, result.ParseError)
			return nil
		}
		ix.IndexFile(f.Path, result)
		return nil
	})
	if err != nil {
		parseErrs = append(parseErrs, err)
	}

	return ix, parseErrs
}
