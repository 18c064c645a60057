package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_DebouncesIntoSingleBatch(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []string, 8)
	w, err := New(dir, Options{
		Debounce: 30 * time.Millisecond,
		OnBatch:  func(paths []string) { batches <- paths },
	})
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "a.go")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case batch := <-batches:
		assert.Contains(t, batch, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}

func TestWatcher_ShouldWatchFilter(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []string, 8)
	w, err := New(dir, Options{
		Debounce:    30 * time.Millisecond,
		ShouldWatch: func(path string) bool { return filepath.Ext(path) == ".go" },
		OnBatch:     func(paths []string) { batches <- paths },
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.go"), []byte("x"), 0o644))

	select {
	case batch := <-batches:
		assert.Contains(t, batch, filepath.Join(dir, "kept.go"))
		assert.NotContains(t, batch, filepath.Join(dir, "ignored.txt"))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}

func TestWatcher_CloseStopsCleanly(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{OnBatch: func([]string) {}})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
