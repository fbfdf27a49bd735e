package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retro-zip/internal/archive"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, s.Load())

	got := s.Get()
	assert.True(t, got.ConfirmOverwrite)
	assert.False(t, got.ShowHidden)
	assert.Equal(t, 6, got.CompressionLevel)
	assert.Equal(t, "deflate", got.CompressionMethod)
	assert.Equal(t, "classic", got.Theme)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"show_hidden": true, "compression_level": 42, "compression_method": "rar"}`), 0o644))

	s := NewStore(path)
	require.NoError(t, s.Load())

	got := s.Get()
	assert.True(t, got.ShowHidden)
	assert.True(t, got.ConfirmOverwrite)
	assert.Equal(t, archive.MaxLevel, got.CompressionLevel)
	assert.Equal(t, archive.CompressionDeflate, got.Compression())
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	s := NewStore(path)
	assert.Error(t, s.Load())
	assert.Equal(t, Defaults(), s.Get())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := NewStore(path)
	s.Update(func(v *Settings) {
		v.LastDirectory = "/srv/zips"
		v.RememberPassword = true
		v.CompressionMethod = "zstd"
	})
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, "/srv/zips", onDisk["last_directory"])
	assert.Equal(t, "zstd", onDisk["compression_method"])

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, s.Get(), reloaded.Get())

	assert.NoFileExists(t, path+".tmp")
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("RETROZIP_SETTINGS", "/tmp/custom.json")
	assert.Equal(t, "/tmp/custom.json", DefaultPath())
}
