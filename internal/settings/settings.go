package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"retro-zip/internal/archive"
)

const (
	fileName   = ".retro_zip_settings.json"
	pathEnvVar = "RETROZIP_SETTINGS"
)

// Settings is the record persisted between sessions.
type Settings struct {
	LastDirectory     string `json:"last_directory"`
	ShowHidden        bool   `json:"show_hidden"`
	ConfirmOverwrite  bool   `json:"confirm_overwrite"`
	RememberPassword  bool   `json:"remember_password"`
	Theme             string `json:"theme"`
	CompressionLevel  int    `json:"compression_level"`
	CompressionMethod string `json:"compression_method"`
}

func Defaults() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Settings{
		LastDirectory:     home,
		ShowHidden:        false,
		ConfirmOverwrite:  true,
		RememberPassword:  false,
		Theme:             "classic",
		CompressionLevel:  archive.DefaultLevel,
		CompressionMethod: string(archive.CompressionDeflate),
	}
}

// normalize clamps the level and falls back to deflate for unknown methods.
func (s Settings) normalize() Settings {
	s.CompressionLevel = archive.ClampLevel(s.CompressionLevel)
	c, err := archive.ParseCompression(s.CompressionMethod)
	if err != nil {
		c = archive.CompressionDeflate
	}
	s.CompressionMethod = string(c)
	if s.Theme == "" {
		s.Theme = "classic"
	}
	return s
}

// Compression is the parsed CompressionMethod.
func (s Settings) Compression() archive.Compression {
	c, _ := archive.ParseCompression(s.CompressionMethod)
	return c
}

// DefaultPath is ~/.retro_zip_settings.json unless RETROZIP_SETTINGS is set.
func DefaultPath() string {
	if path := os.Getenv(pathEnvVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(home, fileName)
}

// Store guards the in-memory settings and their file.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Settings
}

func NewStore(path string) *Store {
	return &Store{path: path, current: Defaults()}
}

func (s *Store) Path() string {
	return s.path
}

// Load merges the file over defaults. A missing file is not an error; a
// malformed one leaves the defaults in place and reports why.
func (s *Store) Load() error {
	loaded := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.set(loaded)
		return nil
	}
	if err != nil {
		s.set(loaded)
		return fmt.Errorf("read settings: %w", err)
	}

	if err := json.Unmarshal(data, &loaded); err != nil {
		s.set(Defaults())
		return fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	s.set(loaded.normalize())
	return nil
}

// Save writes indented JSON through a temp file and rename.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.current, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the settings and stores the normalized result.
func (s *Store) Update(fn func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current
	fn(&next)
	s.current = next.normalize()
	return s.current
}

func (s *Store) set(v Settings) {
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()
}
