package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"sync"
)

// HandleTracker observes archive file handles being opened and closed.
type HandleTracker interface {
	TrackOpen(path string) uint64
	TrackClose(handle uint64)
}

// ProgressFunc receives per-entry progress for long operations.
type ProgressFunc func(done, total int, name string)

// Archive is a path plus an open/closed state. All reads and writes go
// through archive/zip (and github.com/yeka/zip for AES entries).
type Archive struct {
	path    string
	mu      sync.RWMutex
	open    bool
	tracker HandleTracker
}

// Create writes an empty archive at path, replacing any existing file.
func Create(path string) (*Archive, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	return &Archive{path: path, open: true}, nil
}

// Open validates that path is a readable ZIP archive.
func Open(path string) (*Archive, error) {
	a := &Archive{path: path, open: true}
	rc, err := a.openReader()
	if err != nil {
		return nil, err
	}
	a.closeReader(rc)
	return a, nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) SetTracker(tracker HandleTracker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker = tracker
}

func (a *Archive) IsOpen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.open
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.open = false
	return nil
}

// Entries lists the archive in central directory order.
func (a *Archive) Entries() ([]Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return nil, ErrClosed
	}

	rc, err := a.openReader()
	if err != nil {
		return nil, err
	}
	defer a.closeReader(rc)

	entries := make([]Entry, 0, len(rc.File))
	for _, f := range rc.File {
		entries = append(entries, entryFromFile(f))
	}
	return entries, nil
}

func (a *Archive) Stats() (Stats, error) {
	entries, err := a.Entries()
	if err != nil {
		return Stats{}, err
	}
	return StatsOf(entries), nil
}

// Entry looks up a single entry by its exact name.
func (a *Archive) Entry(name string) (Entry, error) {
	entries, err := a.Entries()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (a *Archive) Info() (Info, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return Info{}, ErrClosed
	}

	st, err := os.Stat(a.path)
	if err != nil {
		return Info{}, fmt.Errorf("stat archive: %w", err)
	}

	rc, err := a.openReader()
	if err != nil {
		return Info{}, err
	}
	defer a.closeReader(rc)

	entries := make([]Entry, 0, len(rc.File))
	for _, f := range rc.File {
		entries = append(entries, entryFromFile(f))
	}

	return Info{
		Path:     a.path,
		FileSize: st.Size(),
		Modified: st.ModTime(),
		Comment:  rc.Comment,
		Stats:    StatsOf(entries),
	}, nil
}

type trackedReader struct {
	*zip.ReadCloser
	handle uint64
}

func (a *Archive) openReader() (*trackedReader, error) {
	rc, err := zip.OpenReader(a.path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, zip.ErrChecksum) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidArchive, a.path)
		}
		return nil, fmt.Errorf("open archive: %w", err)
	}
	registerDecompressors(&rc.Reader)

	tr := &trackedReader{ReadCloser: rc}
	if a.tracker != nil {
		tr.handle = a.tracker.TrackOpen(a.path)
	}
	return tr, nil
}

func (a *Archive) closeReader(tr *trackedReader) {
	tr.Close()
	if a.tracker != nil {
		a.tracker.TrackClose(tr.handle)
	}
}
