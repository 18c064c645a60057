// Package mcprpc implements the JSON-RPC/stdio MCP tool surface (spec §6):
// nine tools backed by the content, definition, and catalog indices,
// wired through github.com/modelcontextprotocol/go-sdk/mcp the way the
// teacher's internal/mcp/server.go wires its own tool set.
package mcprpc

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pustynsky/search-index-sub001/internal/catalog"
	"github.com/pustynsky/search-index-sub001/internal/config"
	"github.com/pustynsky/search-index-sub001/internal/content"
	"github.com/pustynsky/search-index-sub001/internal/definition"
	"github.com/pustynsky/search-index-sub001/internal/update"
	"github.com/pustynsky/search-index-sub001/internal/watch"
)

// Engine owns the three indices, the updater, and the optional watcher for
// one project root. It is the thing tool handlers read from and write
// through; the MCP Server layer only translates JSON-RPC calls into calls
// on Engine.
//
// Grounded on the teacher's Server struct holding goroutineIndex directly
// (internal/mcp/server.go): this engine keeps the same "one struct, three
// indices, a readiness flag per index" shape, split into its own package so
// mcprpc's tool-registration code doesn't also have to own index lifecycle.
type Engine struct {
	Cfg *config.Config

	Content *content.Index
	Def     *definition.Index
	Catalog *catalog.Catalog

	Updater *update.Updater
	watcher *watch.Watcher

	contentReady atomic.Bool
	defReady     atomic.Bool

	logger *log.Logger

	mu sync.Mutex // guards full-rebuild swaps of Content/Def/Catalog
}

// indexlog mirrors the teacher's per-subsystem logger convention
// (diagnosticLogger, wrapped per package) — stderr-only, since stdout is
// reserved for JSON-RPC frames.
var indexlog = log.New(log.Writer(), "[mcprpc] ", log.LstdFlags)

// NewEngine constructs an Engine with empty indices over cfg.Project.Root;
// call BuildAll to populate them (synchronously) or StartAsync to build in
// the background while readiness flags stay false.
func NewEngine(cfg *config.Config) *Engine {
	extensions := []string{} // empty means "all" to content/definition/catalog builders
	e := &Engine{
		Cfg:     cfg,
		Content: content.New(cfg.Project.Root, extensions, 0, 2),
		Def:     definition.New(cfg.Project.Root, extensions),
		Catalog: catalog.New(cfg.Project.Root),
		logger:  indexlog,
	}
	e.Updater = update.New(e.Content, e.Def)
	e.Updater.BulkThreshold = cfg.Watch.BulkThreshold
	e.Updater.OnFullRebuild = e.rebuildAll
	e.Updater.OnFileError = func(path string, err error) {
		e.logger.Printf("parse error reindexing %s: %v", path, err)
	}
	return e
}

// BuildAll runs a full synchronous build of all three indices, flipping
// both readiness flags on completion (spec §6 "Readiness").
func (e *Engine) BuildAll() error {
	if err := e.rebuildAll(); err != nil {
		return err
	}
	return nil
}

// StartAsync kicks off BuildAll in a goroutine; ContentReady/DefReady stay
// false until it finishes, matching spec §6's readiness contract for tools
// that read an index while the initial build is in progress.
func (e *Engine) StartAsync() {
	go func() {
		if err := e.BuildAll(); err != nil {
			e.logger.Printf("initial index build failed: %v", err)
		}
	}()
}

func (e *Engine) rebuildAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.contentReady.Store(false)
	e.defReady.Store(false)

	contentIdx, err := content.Build(e.Cfg.Project.Root, content.BuildOptions{
		Include:          e.Cfg.Include,
		Exclude:          e.Cfg.Exclude,
		RespectGitignore: true,
		MaxFileSize:      e.Cfg.Index.MaxFileSize,
		MinTokenLen:      2,
		Concurrency:      0,
	})
	if err != nil {
		return err
	}

	defIdx, parseErrs := definition.Build(e.Cfg.Project.Root, definition.BuildOptions{
		Include:          e.Cfg.Include,
		Exclude:          e.Cfg.Exclude,
		RespectGitignore: true,
		MaxFileSize:      e.Cfg.Index.MaxFileSize,
	})
	for _, perr := range parseErrs {
		e.logger.Printf("definition build parse error: %v", perr)
	}

	cat, err := catalog.Build(e.Cfg.Project.Root, catalog.BuildOptions{
		Include:          e.Cfg.Include,
		Exclude:          e.Cfg.Exclude,
		RespectGitignore: true,
	})
	if err != nil {
		return err
	}

	e.Content = contentIdx
	e.Def = defIdx
	e.Catalog = cat
	e.Updater = update.New(e.Content, e.Def)
	e.Updater.BulkThreshold = e.Cfg.Watch.BulkThreshold
	e.Updater.OnFullRebuild = e.rebuildAll
	e.Updater.OnFileError = func(path string, err error) {
		e.logger.Printf("parse error reindexing %s: %v", path, err)
	}

	e.contentReady.Store(true)
	e.defReady.Store(true)
	return nil
}

// ContentReady reports whether the content index has completed its
// initial build.
func (e *Engine) ContentReady() bool { return e.contentReady.Load() }

// DefReady reports whether the definition index has completed its initial
// build.
func (e *Engine) DefReady() bool { return e.defReady.Load() }

// StartWatching wires a filesystem watcher over the project root into the
// Updater (spec §5); safe to call once.
func (e *Engine) StartWatching() error {
	w, err := watch.New(e.Cfg.Project.Root, watch.Options{
		Debounce: msToDuration(e.Cfg.Watch.DebounceMs),
		OnBatch: func(paths []string) {
			if err := e.Updater.Apply(paths); err != nil {
				e.logger.Printf("incremental update failed: %v", err)
			}
		},
		OnError: func(err error) {
			e.logger.Printf("watcher error: %v", err)
		},
	})
	if err != nil {
		return err
	}
	e.watcher = w
	return nil
}

// Close stops the watcher, if one was started.
func (e *Engine) Close() error {
	if e.watcher != nil {
		return e.watcher.Close()
	}
	return nil
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
