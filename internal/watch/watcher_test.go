package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, chan string) {
	t.Helper()
	changes := make(chan string, 10)
	w, err := New(func(path string) { changes <- path }, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond
	t.Cleanup(w.Shutdown)
	return w, changes
}

func TestWatcherReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.zip")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	w, changes := newTestWatcher(t)
	require.NoError(t, w.Watch(target))

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0o644))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(target)
		assert.Equal(t, abs, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.zip")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	w, changes := newTestWatcher(t)
	require.NoError(t, w.Watch(target))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSuppressesOwnWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.zip")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	w, changes := newTestWatcher(t)
	require.NoError(t, w.Watch(target))

	w.Suppress(time.Second)
	require.NoError(t, os.WriteFile(target, []byte("v2"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("suppressed write reported for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestUnwatchStopsReports(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.zip")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	w, changes := newTestWatcher(t)
	require.NoError(t, w.Watch(target))
	w.Unwatch()

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}
