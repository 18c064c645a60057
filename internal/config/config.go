// Package config loads the engine's project configuration: a KDL project
// file (.ix.kdl) plus an optional per-user TOML override layer, modeled on
// the teacher's internal/config split between kdl_config.go (project
// settings) and its TOML readers (build_artifact_detector.go uses
// pelletier/go-toml/v2 the same way, just for a different file).
package config

import (
	"os"
	"path/filepath"
)

// Config holds every tunable the engine reads at startup. Field groups
// mirror the teacher's Project/Index/Performance/Search split, trimmed to
// what SPEC_FULL.md actually wires up.
type Config struct {
	Project Project
	Index   Index
	Watch   Watch

	// MaxResponseBytes gates the response-shaping truncation pass (spec
	// §4.8). 0 disables truncation.
	MaxResponseBytes int

	Include []string
	Exclude []string
}

type Project struct {
	Root string
}

type Index struct {
	MaxFileSize    int64
	MaxTotalSizeMB int64
	MaxFileCount   int
}

type Watch struct {
	DebounceMs    int
	BulkThreshold int
}

// Defaults mirrors the teacher's Load() fallback values, scaled to this
// engine's own knobs.
func Defaults(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:    10 * 1024 * 1024,
			MaxTotalSizeMB: 500,
			MaxFileCount:   10000,
		},
		Watch: Watch{
			DebounceMs:    500,
			BulkThreshold: 200,
		},
		MaxResponseBytes: 1 * 1024 * 1024,
		Include:          []string{},
		Exclude:          defaultExcludes(),
	}
}

// defaultExcludes is a trimmed version of the teacher's
// getDefaultExclusions(): the patterns a fresh project needs before its
// own .ix.kdl adds anything language-specific.
func defaultExcludes() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/__pycache__/**",
		"**/*.pyc",
	}
}

// Load resolves the engine's configuration for a project root: defaults,
// overridden by .ix.kdl in root (if present), overridden by
// ~/.config/ix/override.toml (if present) for the response-size/debounce/
// bulk-threshold knobs it's scoped to (spec DOMAIN STACK: the teacher keeps both a KDL
// project format and a TOML layer; this engine keeps both homes too
// instead of collapsing them into one).
func Load(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	cfg := Defaults(abs)

	kdlCfg, err := LoadKDL(abs)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		applyKDL(cfg, kdlCfg)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		override, err := LoadTOMLOverride(filepath.Join(home, ".config", "ix", "override.toml"))
		if err != nil {
			return nil, err
		}
		applyOverride(cfg, override)
	}

	return cfg, nil
}
