package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func fixture(t *testing.T) (dir, zipPath string) {
	t.Helper()
	dir = t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "deep.txt"), []byte(strings.Repeat("z", 500)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".secret"), []byte("hidden"), 0o644))

	zipPath = filepath.Join(dir, "out.zip")
	code, _, stderr := run(t, "-f", zipPath, "add", "--create", "-m", "zstd",
		filepath.Join(src, "hello.txt"), filepath.Join(src, "sub"), filepath.Join(src, ".secret"))
	require.Equal(t, 0, code, stderr)
	return dir, zipPath
}

func TestAddAndList(t *testing.T) {
	_, zipPath := fixture(t)

	code, out, _ := run(t, "-f", zipPath, "list")
	require.Equal(t, 0, code)
	assert.Equal(t, "hello.txt\nsub/deep.txt\n", out)

	code, out, _ = run(t, "-f", zipPath, "list", "--all", "--long")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Zstandard")
	assert.Contains(t, out, ".secret")
	assert.Contains(t, out, "500.0 B")
}

func TestArchiveFromEnv(t *testing.T) {
	_, zipPath := fixture(t)
	t.Setenv("RZIP_ARCHIVE", zipPath)

	code, out, _ := run(t, "info")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Files: 3")
	assert.Contains(t, out, "Path: "+zipPath)
}

func TestMissingArchiveFlag(t *testing.T) {
	t.Setenv("RZIP_ARCHIVE", "")

	code, _, stderr := run(t, "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no archive given")
}

func TestAddWithoutCreateFails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	code, _, _ := run(t, "-f", filepath.Join(dir, "none.zip"), "add", file)
	assert.Equal(t, 1, code)
}

func TestCatAndDelete(t *testing.T) {
	_, zipPath := fixture(t)

	code, out, _ := run(t, "-f", zipPath, "cat", "hello.txt")
	require.Equal(t, 0, code)
	assert.Equal(t, "hello world", out)

	code, out, _ = run(t, "-f", zipPath, "delete", "hello.txt")
	require.Equal(t, 0, code)
	assert.Equal(t, "Deleted 1 file(s)\n", out)

	code, _, stderr := run(t, "-f", zipPath, "cat", "hello.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

func TestExtractRefusesOverwrite(t *testing.T) {
	dir, zipPath := fixture(t)
	dest := filepath.Join(dir, "dest")

	code, out, _ := run(t, "-f", zipPath, "extract", "-d", dest, "--progress")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Extracted 3 file(s)")
	assert.FileExists(t, filepath.Join(dest, "sub", "deep.txt"))

	code, _, stderr := run(t, "-f", zipPath, "extract", "-d", dest)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exist")

	code, _, _ = run(t, "-f", zipPath, "extract", "-d", dest, "--overwrite", "hello.txt")
	assert.Equal(t, 0, code)
}

func TestEncryptedEntries(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plan.txt")
	require.NoError(t, os.WriteFile(file, []byte("top secret"), 0o644))
	zipPath := filepath.Join(dir, "locked.zip")

	code, _, stderr := run(t, "-f", zipPath, "add", "-c", "-e", file)
	assert.Equal(t, 1, code, "encryption needs a password")
	assert.Contains(t, stderr, "requires a password")

	code, _, stderr = run(t, "-f", zipPath, "--password", "pw", "add", "-c", "-e", file)
	require.Equal(t, 0, code, stderr)

	code, _, stderr = run(t, "-f", zipPath, "cat", "plan.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires a password")

	code, _, stderr = run(t, "-f", zipPath, "--password", "wrong", "cat", "plan.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "wrong password")

	code, out, _ := run(t, "-f", zipPath, "--password", "pw", "cat", "plan.txt")
	require.Equal(t, 0, code)
	assert.Equal(t, "top secret", out)
}

func TestHelpAndUnknownCommand(t *testing.T) {
	code, out, _ := run(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "extract")

	code, _, _ = run(t, "frobnicate")
	assert.Equal(t, 1, code)

	code, _, _ = run(t, "-f", "x.zip", "add", "-m", "lzma", "a")
	assert.Equal(t, 1, code, "unknown method is rejected by the parser")
}

func TestJSONLogging(t *testing.T) {
	_, zipPath := fixture(t)

	code, _, stderr := run(t, "-v", "--json-log", "-f", zipPath, "info")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, `"component":"CLI"`)
}

func TestAddReportsFallbacks(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "x", "same.txt")
	second := filepath.Join(dir, "y", "same.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(first), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(second), 0o755))
	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("y"), 0o644))
	zipPath := filepath.Join(dir, "dup.zip")

	code, out, stderr := run(t, "-f", zipPath, "--password", "pw", "add", "-c", "-e", "-m", "zstd", first, second)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Added 1 file(s)\n", out)
	assert.Contains(t, stderr, "encrypted entries use deflate, not zstd")
	assert.Contains(t, stderr, "1 file(s) shadowed")

	code, out, _ = run(t, "-f", zipPath, "--password", "pw", "cat", "same.txt")
	require.Equal(t, 0, code)
	assert.Equal(t, "y", out)
}
