// Package persist implements the self-describing binary blob persistence
// described in spec §4.4: indices are serialized under a per-user cache
// directory, keyed by a hash of the canonical root path (plus, for the
// content index, the comma-joined extension set).
package persist

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/pustynsky/search-index-sub001/internal/pathutil"
)

// Key computes the 64-bit cache key for a root path and an optional
// extension set.
func Key(root string, extensions []string) string {
	norm := pathutil.Normalize(root)
	exts := append([]string(nil), extensions...)
	sort.Strings(exts)
	h := xxhash.New()
	_, _ = h.WriteString(norm)
	if len(exts) > 0 {
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(strings.Join(exts, ","))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// CacheDir returns the OS-appropriate local data directory for persisted
// index blobs, creating it if necessary.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "ix", "index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// BlobPath returns the path a blob with the given key and kind ("content"
// or "definitions") would be stored at.
func BlobPath(kind, key string) (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, kind+"-"+key+".gob"), nil
}

// Save gob-encodes v and writes it atomically (write-to-temp, rename) to
// the blob path for (kind, key).
func Save(kind, key string, v any) error {
	path, err := BlobPath(kind, key)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s index: %w", kind, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load gob-decodes the blob for (kind, key) into v. Returns os.ErrNotExist
// (wrapped) if no blob has been saved yet.
func Load(kind, key string, v any) error {
	path, err := BlobPath(kind, key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Exists reports whether a blob for (kind, key) has been saved.
func Exists(kind, key string) bool {
	path, err := BlobPath(kind, key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
