package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	changed := make(chan string, 4)
	w, err := WatchLayout(path, 20*time.Millisecond, func(p string) { changed <- p }, nil)
	require.NoError(t, err)
	defer w.Close()

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"board_name":"x"}`), 0o644))

	select {
	case p := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestLayoutWatcherIgnoreFor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	changed := make(chan string, 4)
	w, err := WatchLayout(path, 20*time.Millisecond, func(p string) { changed <- p }, nil)
	require.NoError(t, err)
	defer w.Close()

	w.IgnoreFor(time.Second)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	select {
	case <-changed:
		t.Fatal("change reported while ignored")
	case <-time.After(200 * time.Millisecond):
	}
}
