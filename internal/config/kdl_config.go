package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// kdlConfig holds only the fields LoadKDL actually fills in; zero value
// for a field means "not set in the file", so applyKDL can tell an
// explicit override apart from an untouched default.
type kdlConfig struct {
	root    string
	include []string
	exclude []string

	maxFileSize    int64
	maxTotalSizeMB int64
	maxFileCount   int

	debounceMs       int
	bulkThreshold    int
	maxResponseBytes int
}

// LoadKDL attempts to load .ix.kdl from root. Returns (nil, nil)
// when the file doesn't exist, matching the teacher's LoadKDL contract of
// treating a missing file as "use defaults" rather than an error.
func LoadKDL(root string) (*kdlConfig, error) {
	path := filepath.Join(root, ".ix.kdl")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read .ix.kdl: %w", err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse .ix.kdl: %w", err)
	}

	cfg := &kdlConfig{}
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						cfg.root = s
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.maxFileSize = sz
						}
					} else if v, ok := firstIntArg(cn); ok {
						cfg.maxFileSize = int64(v)
					}
				case "max_total_size_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.maxTotalSizeMB = int64(v)
					}
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						cfg.maxFileCount = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.debounceMs = v
					}
				case "bulk_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.bulkThreshold = v
					}
				}
			}
		case "max_response_bytes":
			if v, ok := firstIntArg(n); ok {
				cfg.maxResponseBytes = v
			}
		case "include":
			cfg.include = append(cfg.include, collectStringArgs(n)...)
		case "exclude":
			cfg.exclude = append(cfg.exclude, collectStringArgs(n)...)
		}
	}

	if cfg.root == "" {
		cfg.root = root
	} else if !filepath.IsAbs(cfg.root) {
		cfg.root = filepath.Clean(filepath.Join(root, cfg.root))
	}

	return cfg, nil
}

// applyKDL overlays any fields kdlConfig actually set onto cfg.
func applyKDL(cfg *Config, k *kdlConfig) {
	if k.root != "" {
		cfg.Project.Root = k.root
	}
	if k.maxFileSize > 0 {
		cfg.Index.MaxFileSize = k.maxFileSize
	}
	if k.maxTotalSizeMB > 0 {
		cfg.Index.MaxTotalSizeMB = k.maxTotalSizeMB
	}
	if k.maxFileCount > 0 {
		cfg.Index.MaxFileCount = k.maxFileCount
	}
	if k.debounceMs > 0 {
		cfg.Watch.DebounceMs = k.debounceMs
	}
	if k.bulkThreshold > 0 {
		cfg.Watch.BulkThreshold = k.bulkThreshold
	}
	if k.maxResponseBytes > 0 {
		cfg.MaxResponseBytes = k.maxResponseBytes
	}
	if len(k.include) > 0 {
		cfg.Include = k.include
	}
	if len(k.exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, k.exclude...)
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// parseSize handles size strings like "10MB", "500KB", matching the
// teacher's parseSize.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
