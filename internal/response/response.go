// Package response implements the MCP tool-response shaper: metrics
// injection and the size-budgeted progressive truncation pass (spec §4.8).
// It operates on generic JSON-shaped data (map[string]any) rather than
// per-tool structs, since every search_* tool's payload shape differs and
// the truncation algorithm itself is shape-agnostic (it looks for well-known
// keys like "files"/"lines"/"lineContent" and otherwise falls back to the
// largest top-level array). Marshaling uses encoding/json: nothing in the
// retrieval pack offers a reshape-and-remeasure JSON builder, so this is one
// of the few places the implementation stays on the standard library.
package response

import (
	"encoding/json"
	"strings"
)

// Style selects the wording of the truncation hint string.
type Style string

const (
	StyleGrep       Style = "grep"
	StyleDefinition Style = "definition"
)

// Metrics are injected into summary after truncation when enabled.
type Metrics struct {
	Enabled      bool
	SearchTimeMs float64
	IndexFiles   int
	IndexTokens  uint64
}

// Payload is the shapeable response: Data holds every top-level field
// besides "summary" (e.g. "files", "definitions", "callTree"); Summary holds
// the tool's own summary fields before metrics/truncation augment it.
type Payload struct {
	Data    map[string]any
	Summary map[string]any
}

// ShapeOptions configures one Shape call.
type ShapeOptions struct {
	MaxResponseBytes int // 0 disables truncation
	Metrics          Metrics
	Style            Style
}

// Shape assembles the final `{<payload>, summary: {...}}` JSON document,
// running the P1-P5 truncation phases (spec §4.8) if the first marshal
// exceeds MaxResponseBytes.
func Shape(p Payload, opts ShapeOptions) ([]byte, error) {
	if p.Data == nil {
		p.Data = map[string]any{}
	}
	if p.Summary == nil {
		p.Summary = map[string]any{}
	}

	var (
		truncated bool
		reasons   []string
		original  int
	)

	if opts.MaxResponseBytes > 0 {
		size, err := measure(p)
		if err != nil {
			return nil, err
		}
		if size > opts.MaxResponseBytes {
			original = size
			truncated = true
			reasons = runPhases(&p, opts.MaxResponseBytes)
		}
	}

	if truncated {
		p.Summary["responseTruncated"] = true
		p.Summary["truncationReason"] = strings.Join(reasons, ";")
		p.Summary["originalResponseBytes"] = original
		p.Summary["truncationHint"] = hint(opts.Style)
	}

	if opts.Metrics.Enabled {
		p.Summary["searchTimeMs"] = opts.Metrics.SearchTimeMs
		p.Summary["indexFiles"] = opts.Metrics.IndexFiles
		p.Summary["indexTokens"] = opts.Metrics.IndexTokens
	}

	if !opts.Metrics.Enabled {
		return marshal(p)
	}

	// responseBytes/estimatedTokens are measured with every other summary
	// field in place, the other metrics fields included; the bytes of these
	// two fields themselves are not counted.
	size, err := measure(p)
	if err != nil {
		return nil, err
	}
	p.Summary["responseBytes"] = size
	p.Summary["estimatedTokens"] = size / 4

	return marshal(p)
}

func measure(p Payload) (int, error) {
	b, err := marshal(p)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func marshal(p Payload) ([]byte, error) {
	out := make(map[string]any, len(p.Data)+1)
	for k, v := range p.Data {
		out[k] = v
	}
	out["summary"] = p.Summary
	return json.Marshal(out)
}

func hint(style Style) string {
	if style == StyleDefinition {
		return "response truncated; narrow with name, kind, file, or parent filters to reduce the result set"
	}
	return "response truncated; pass countOnly=true or narrow with dir/ext/exclude filters to reduce the result set"
}

// runPhases applies P1-P5 in order, re-measuring after each phase and
// stopping as soon as the payload fits under budget.
func runPhases(p *Payload, budget int) []string {
	var applied []string

	files, hasFiles := fileEntries(p.Data["files"])

	try := func(name string, fn func()) bool {
		fn()
		applied = append(applied, name)
		size, err := measure(*p)
		return err == nil && size <= budget
	}

	if hasFiles {
		if try("P1", func() { phase1CapLines(files) }) {
			return applied
		}
	}

	if try("P2", func() { phase2CapMatchedTokens(p.Summary) }) {
		return applied
	}

	if hasFiles {
		if try("P3", func() { phase3DropLines(files) }) {
			return applied
		}
		if try("P4", func() { phase4DropTail(p, files, budget) }) {
			return applied
		}
	}

	try("P5", func() { phase5GenericFallback(p, budget) })
	return applied
}

// fileEntries extracts p.Data["files"] as []map[string]any if present,
// leaving the original slice's backing maps shared so in-place edits are
// visible through p.Data["files"] too.
func fileEntries(v any) ([]map[string]any, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

// phase1CapLines caps each file entry's "lines" to the first 10 and removes
// "lineContent" entirely, per spec §4.8 P1.
func phase1CapLines(files []map[string]any) {
	for _, f := range files {
		if lines, ok := f["lines"].([]any); ok && len(lines) > 10 {
			f["lines"] = lines[:10]
			f["linesOmitted"] = true
		}
		if _, ok := f["lineContent"]; ok {
			delete(f, "lineContent")
			f["lineContentOmitted"] = true
		}
	}
}

// phase2CapMatchedTokens caps summary.matchedTokens to the first 20,
// per spec §4.8 P2.
func phase2CapMatchedTokens(summary map[string]any) {
	tokens, ok := summary["matchedTokens"].([]any)
	if !ok || len(tokens) <= 20 {
		return
	}
	summary["matchedTokens"] = tokens[:20]
}

// phase3DropLines removes every file entry's "lines" array entirely,
// per spec §4.8 P3.
func phase3DropLines(files []map[string]any) {
	for _, f := range files {
		if _, ok := f["lines"]; ok {
			delete(f, "lines")
			f["linesOmitted"] = true
		}
	}
}

// phase4DropTail estimates the remaining excess against the average
// per-entry size and drops that many file entries from the tail,
// per spec §4.8 P4.
func phase4DropTail(p *Payload, files []map[string]any, budget int) {
	size, err := measure(*p)
	if err != nil || size <= budget || len(files) == 0 {
		return
	}
	excess := size - budget
	avg := size / len(files)
	if avg == 0 {
		avg = 1
	}
	drop := (excess + avg - 1) / avg
	if drop <= 0 {
		return
	}
	if drop >= len(files) {
		drop = len(files) - 1 // always leave at least one entry
	}
	kept := files[:len(files)-drop]
	raw := make([]any, len(kept))
	for i, f := range kept {
		raw[i] = f
	}
	p.Data["files"] = raw
	p.Summary["returned"] = len(kept)
}

// phase5GenericFallback picks the largest top-level array in p.Data other
// than "files" and truncates it proportionally to the remaining excess,
// per spec §4.8 P5.
func phase5GenericFallback(p *Payload, budget int) {
	size, err := measure(*p)
	if err != nil || size <= budget {
		return
	}

	var bestKey string
	var bestLen int
	var bestArr []any
	for k, v := range p.Data {
		if k == "files" {
			continue
		}
		arr, ok := v.([]any)
		if !ok || len(arr) <= bestLen {
			continue
		}
		bestKey, bestArr, bestLen = k, arr, len(arr)
	}
	if bestKey == "" || bestLen == 0 {
		return
	}

	excess := size - budget
	avg := size / bestLen
	if avg == 0 {
		avg = 1
	}
	drop := (excess + avg - 1) / avg
	if drop <= 0 {
		return
	}
	if drop >= bestLen {
		drop = bestLen - 1
	}
	p.Data[bestKey] = bestArr[:bestLen-drop]
	p.Summary["returned"] = bestLen - drop
}
