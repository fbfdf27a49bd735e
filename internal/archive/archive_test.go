package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newArchive(t *testing.T) (*Archive, string) {
	t.Helper()
	dir := t.TempDir()
	a, err := Create(filepath.Join(dir, "test.zip"))
	require.NoError(t, err)
	return a, dir
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestCreateIsEmpty(t *testing.T) {
	a, _ := newArchive(t)

	entries, err := a.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	reopened, err := Open(a.Path())
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.zip"), "this is not a zip file")

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestClosedArchive(t *testing.T) {
	a, dir := newArchive(t)
	require.NoError(t, a.Close())
	assert.False(t, a.IsOpen())

	_, err := a.Entries()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Add(context.Background(), []string{dir}, AddOptions{}, nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Delete([]string{"x"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Extract(context.Background(), nil, dir, "", nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Read("x", "", DefaultViewLimit)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAddFilesAndDirectories(t *testing.T) {
	a, dir := newArchive(t)
	src := filepath.Join(dir, "src")
	single := writeFile(t, filepath.Join(src, "readme.txt"), "hello")
	writeFile(t, filepath.Join(src, "docs", "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "docs", "sub", "b.txt"), "beta")

	var calls []string
	res, err := a.Add(context.Background(),
		[]string{single, filepath.Join(src, "docs"), filepath.Join(src, "missing.txt")},
		AddOptions{Compression: CompressionDeflate, Level: DefaultLevel},
		func(done, total int, name string) { calls = append(calls, name) })
	require.NoError(t, err)

	assert.Equal(t, AddResult{Added: 3, Skipped: 1}, res)
	assert.Equal(t, []string{"readme.txt", "docs/a.txt", "docs/sub/b.txt"}, calls)

	entries, err := a.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"readme.txt", "docs/a.txt", "docs/sub/b.txt"}, names(entries))
	assert.Equal(t, MethodDeflate, entries[0].Method)
	assert.Equal(t, uint64(5), entries[0].Size)

	_, err = os.Stat(a.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestAddReplacesExistingName(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "notes.txt"), "first")
	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	writeFile(t, path, "second version")
	_, err = a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	entries, err := a.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := a.Read("notes.txt", "", DefaultViewLimit)
	require.NoError(t, err)
	assert.Equal(t, "second version", string(data))
}

func TestAddSameNameTwiceInOneCall(t *testing.T) {
	a, dir := newArchive(t)
	first := writeFile(t, filepath.Join(dir, "x", "same.txt"), "from x")
	second := writeFile(t, filepath.Join(dir, "y", "same.txt"), "from y")
	other := writeFile(t, filepath.Join(dir, "x", "other.txt"), "other")

	res, err := a.Add(context.Background(), []string{first, other, second}, AddOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, AddResult{Added: 2, Duplicates: 1}, res)

	entries, err := a.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"other.txt", "same.txt"}, names(entries))

	data, err := a.Read("same.txt", "", DefaultViewLimit)
	require.NoError(t, err)
	assert.Equal(t, "from y", string(data))

	removed, err := a.Delete([]string{"same.txt"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestAddKeepsExistingEntries(t *testing.T) {
	a, dir := newArchive(t)
	first := writeFile(t, filepath.Join(dir, "one.txt"), "one")
	second := writeFile(t, filepath.Join(dir, "two.txt"), "two")

	_, err := a.Add(context.Background(), []string{first}, AddOptions{Compression: CompressionZstd}, nil)
	require.NoError(t, err)
	_, err = a.Add(context.Background(), []string{second}, AddOptions{Compression: CompressionStore}, nil)
	require.NoError(t, err)

	entries, err := a.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, MethodZstd, entries[0].Method)
	assert.Equal(t, MethodStore, entries[1].Method)

	data, err := a.Read("one.txt", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestCodecsRoundTrip(t *testing.T) {
	content := ""
	for i := 0; i < 200; i++ {
		content += "the quick brown fox jumps over the lazy dog\n"
	}

	for _, c := range Compressions {
		t.Run(string(c), func(t *testing.T) {
			a, dir := newArchive(t)
			path := writeFile(t, filepath.Join(dir, "fox.txt"), content)

			_, err := a.Add(context.Background(), []string{path}, AddOptions{Compression: c, Level: 9}, nil)
			require.NoError(t, err)

			entry, err := a.Entry("fox.txt")
			require.NoError(t, err)
			assert.Equal(t, c.Method(), entry.Method)
			if c != CompressionStore {
				assert.Less(t, entry.CompressedSize, entry.Size)
			}

			data, err := a.Read("fox.txt", "", 0)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		})
	}
}

func TestDelete(t *testing.T) {
	a, dir := newArchive(t)
	var paths []string
	for _, n := range []string{"a.txt", "b.txt", "c.txt"} {
		paths = append(paths, writeFile(t, filepath.Join(dir, n), n))
	}
	_, err := a.Add(context.Background(), paths, AddOptions{}, nil)
	require.NoError(t, err)

	removed, err := a.Delete([]string{"b.txt"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := a.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, names(entries))
}

func TestDeleteUnknownLeavesArchiveUntouched(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "keep.txt"), "keep")
	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	before, err := os.ReadFile(a.Path())
	require.NoError(t, err)

	_, err = a.Delete([]string{"keep.txt", "ghost.txt"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = os.Stat(a.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExtract(t *testing.T) {
	a, dir := newArchive(t)
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "tree", "x.txt"), "x")
	writeFile(t, filepath.Join(src, "tree", "deep", "y.txt"), "y")
	_, err := a.Add(context.Background(), []string{filepath.Join(src, "tree")}, AddOptions{}, nil)
	require.NoError(t, err)

	dest := filepath.Join(dir, "out")
	n, err := a.Extract(context.Background(), nil, dest, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dest, "tree", "deep", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "y", string(data))

	selected := filepath.Join(dir, "selected")
	n, err = a.Extract(context.Background(), []string{"tree/x.txt"}, selected, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(selected, "tree", "x.txt"))
	assert.NoFileExists(t, filepath.Join(selected, "tree", "deep", "y.txt"))

	conflicts, err := a.Conflicts(nil, dest)
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)

	conflicts, err = a.Conflicts(nil, filepath.Join(dir, "fresh"))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestExtractRestoresModTime(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "old.txt"), "old")
	stamp := time.Date(2020, 5, 17, 10, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	dest := filepath.Join(dir, "out")
	_, err = a.Extract(context.Background(), nil, dest, "", nil)
	require.NoError(t, err)

	st, err := os.Stat(filepath.Join(dest, "old.txt"))
	require.NoError(t, err)
	assert.WithinDuration(t, stamp, st.ModTime(), 2*time.Second)
}

func TestExtractRejectsUnsafeNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evil.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	a, err := Open(path)
	require.NoError(t, err)

	_, err = a.Extract(context.Background(), nil, filepath.Join(dir, "out"), "", nil)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestEncryptedEntries(t *testing.T) {
	a, dir := newArchive(t)
	plain := writeFile(t, filepath.Join(dir, "plain.txt"), "open text")
	secret := writeFile(t, filepath.Join(dir, "secret.txt"), "classified")

	_, err := a.Add(context.Background(), []string{plain}, AddOptions{}, nil)
	require.NoError(t, err)
	res, err := a.Add(context.Background(), []string{secret}, AddOptions{Password: "hunter2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	entry, err := a.Entry("secret.txt")
	require.NoError(t, err)
	assert.True(t, entry.Encrypted)
	assert.Equal(t, "AES", MethodName(entry.Method))

	_, err = a.Read("secret.txt", "", 0)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = a.Read("secret.txt", "wrong", 0)
	assert.ErrorIs(t, err, ErrWrongPassword)

	data, err := a.Read("secret.txt", "hunter2", 0)
	require.NoError(t, err)
	assert.Equal(t, "classified", string(data))

	dest := filepath.Join(dir, "out")
	_, err = a.Extract(context.Background(), nil, dest, "", nil)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	n, err := a.Extract(context.Background(), nil, dest, "hunter2", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err := os.ReadFile(filepath.Join(dest, "secret.txt"))
	require.NoError(t, err)
	assert.Equal(t, "classified", string(got))

	_, err = os.Stat(a.Path() + ".aes.tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestEncryptedCompression(t *testing.T) {
	assert.Equal(t, CompressionZstd, EffectiveCompression(AddOptions{Compression: CompressionZstd}))
	assert.Equal(t, CompressionDeflate, EffectiveCompression(AddOptions{}))
	assert.Equal(t, CompressionDeflate, EffectiveCompression(AddOptions{Compression: CompressionBrotli, Password: "pw"}))
	assert.Equal(t, CompressionStore, EffectiveCompression(AddOptions{Compression: CompressionStore, Password: "pw"}))

	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "stored.txt"), strings.Repeat("a", 400))
	_, err := a.Add(context.Background(), []string{path},
		AddOptions{Compression: CompressionStore, Password: "pw"}, nil)
	require.NoError(t, err)

	entry, err := a.Entry("stored.txt")
	require.NoError(t, err)
	// salt, verifier and authentication code around the stored payload
	assert.Equal(t, entry.Size+28, entry.CompressedSize)

	data, err := a.Read("stored.txt", "pw", 0)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 400), string(data))
}

func TestEncryptedUnsupportedMethodIsNotAPasswordError(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "secret.txt"), "classified")
	_, err := a.Add(context.Background(), []string{path},
		AddOptions{Compression: CompressionStore, Password: "pw"}, nil)
	require.NoError(t, err)

	// rewrite the inner method of the AES extra field from store to LZMA
	raw, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	storeExtra := []byte{0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x03, 0x00, 0x00}
	lzmaExtra := []byte{0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x03, 0x0e, 0x00}
	require.Equal(t, 2, bytes.Count(raw, storeExtra))
	require.NoError(t, os.WriteFile(a.Path(), bytes.ReplaceAll(raw, storeExtra, lzmaExtra), 0o644))

	_, err = a.Read("secret.txt", "pw", 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWrongPassword)
	assert.Contains(t, err.Error(), "secret.txt")
}

func TestReadLimit(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "big.txt"), string(make([]byte, 2048)))
	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	_, err = a.Read("big.txt", "", 1024)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = a.Read("nope.txt", "", 1024)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInfo(t *testing.T) {
	a, dir := newArchive(t)
	path := writeFile(t, filepath.Join(dir, "x.txt"), "some content")
	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)

	info, err := a.Info()
	require.NoError(t, err)
	assert.Equal(t, a.Path(), info.Path)
	assert.Equal(t, 1, info.Stats.Files)
	assert.Equal(t, uint64(12), info.Stats.TotalSize)

	st, err := os.Stat(a.Path())
	require.NoError(t, err)
	assert.Equal(t, st.Size(), info.FileSize)
}

type countingTracker struct {
	mu     sync.Mutex
	next   uint64
	opened map[uint64]string
}

func (c *countingTracker) TrackOpen(path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.opened[c.next] = path
	return c.next
}

func (c *countingTracker) TrackClose(handle uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.opened, handle)
}

func TestHandlesAreReleased(t *testing.T) {
	a, dir := newArchive(t)
	tracker := &countingTracker{opened: map[uint64]string{}}
	a.SetTracker(tracker)

	path := writeFile(t, filepath.Join(dir, "x.txt"), "x")
	_, err := a.Add(context.Background(), []string{path}, AddOptions{}, nil)
	require.NoError(t, err)
	_, err = a.Entries()
	require.NoError(t, err)
	_, err = a.Read("x.txt", "", 0)
	require.NoError(t, err)
	_, err = a.Delete([]string{"x.txt"})
	require.NoError(t, err)

	assert.Greater(t, tracker.next, uint64(0))
	assert.Empty(t, tracker.opened)
}
