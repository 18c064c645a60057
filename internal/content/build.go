package content

import (
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pustynsky/search-index-sub001/internal/walk"
)

// BuildOptions configures a full build (spec §4.3).
type BuildOptions struct {
	Extensions       []string
	Include          []string
	Exclude          []string
	RespectGitignore bool
	MaxFileSize      int64
	MinTokenLen      int
	MaxAgeSecs       int64
	Concurrency      int // 0 selects a small default
}

// Build walks root and constructs a fresh Index. The read-and-tokenize
// phase runs with bounded parallelism; serialization into the shared
// inverted map is single-writer via Index's own lock, per spec §4.3.
func Build(root string, opts BuildOptions) (*Index, error) {
	idx := New(root, opts.Extensions, opts.MaxAgeSecs, opts.MinTokenLen)

	var files []walk.File
	err := walk.Walk(root, walk.Options{
		Extensions:       opts.Extensions,
		Include:          opts.Include,
		Exclude:          opts.Exclude,
		RespectGitignore: opts.RespectGitignore,
		MaxFileSize:      opts.MaxFileSize,
	}, func(f walk.File) error {
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	type readResult struct {
		path    string
		content string
	}
	results := make([]readResult, len(files))

	var g errgroup.Group
	g.SetLimit(concurrency)
	var mu sync.Mutex
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return nil // best-effort: skip unreadable file, not fatal to the build
			}
			mu.Lock()
			results[i] = readResult{path: f.Path, content: string(data)}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.path == "" {
			continue
		}
		idx.IndexFile(r.path, r.content)
	}

	idx.EnsureTrigramFresh()
	return idx, nil
}
