package catalog

import (
	"github.com/pustynsky/search-index-sub001/internal/walk"
)

// BuildOptions configures a full catalog build: every file the walker
// visits under root (directories themselves are not recorded), unfiltered
// by extension (unlike content/definition builds,
// search_find/search_fast match on filename, not language).
type BuildOptions struct {
	Include          []string
	Exclude          []string
	RespectGitignore bool
}

// Build walks root and returns a populated Catalog.
func Build(root string, opts BuildOptions) (*Catalog, error) {
	c := New(root)
	err := walk.Walk(root, walk.Options{
		Include:          opts.Include,
		Exclude:          opts.Exclude,
		RespectGitignore: opts.RespectGitignore,
	}, func(f walk.File) error {
		c.Insert(FileEntry{Path: f.Path, Size: f.Size, ModTime: f.ModTime})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
