package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlOverride is the per-user tuning file (~/.config/ix/override.toml),
// scoped deliberately narrow: response-size, debounce and bulk-threshold
// knobs only, the
// things a user legitimately wants to tune per-machine without touching a
// project's checked-in .ix.kdl. Grounded on the teacher's own TOML reads
// (internal/config/build_artifact_detector.go unmarshals Cargo.toml /
// pyproject.toml into plain structs with pelletier/go-toml/v2 the same way).
type tomlOverride struct {
	MaxResponseBytes *int `toml:"max_response_bytes"`
	DebounceMs       *int `toml:"debounce_ms"`
	BulkThreshold    *int `toml:"bulk_threshold"`
}

// LoadTOMLOverride reads path, returning (nil, nil) if it doesn't exist.
func LoadTOMLOverride(path string) (*tomlOverride, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read override.toml: %w", err)
	}

	var o tomlOverride
	if err := toml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse override.toml: %w", err)
	}
	return &o, nil
}

func applyOverride(cfg *Config, o *tomlOverride) {
	if o == nil {
		return
	}
	if o.MaxResponseBytes != nil {
		cfg.MaxResponseBytes = *o.MaxResponseBytes
	}
	if o.DebounceMs != nil {
		cfg.Watch.DebounceMs = *o.DebounceMs
	}
	if o.BulkThreshold != nil {
		cfg.Watch.BulkThreshold = *o.BulkThreshold
	}
}
