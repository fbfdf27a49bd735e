package filetracker

import (
	"runtime"
	"sync"
	"time"
)

// FileInfo describes one open archive handle.
type FileInfo struct {
	Path       string
	Handle     uint64
	OpenedAt   time.Time
	StackTrace []uintptr
}

type EventPublisher interface {
	Publish(eventType string, info FileInfo, held time.Duration)
}

// Tracker counts archive readers that are opened and closed so leaked
// handles can be reported at shutdown.
type Tracker struct {
	openFiles   map[uint64]FileInfo
	next        uint64
	mu          sync.RWMutex
	eventBus    EventPublisher
	enabled     bool
	stackTraces bool
	now         func() time.Time
}

func NewTracker(eventBus EventPublisher) *Tracker {
	return &Tracker{
		openFiles: make(map[uint64]FileInfo),
		eventBus:  eventBus,
		enabled:   true,
		now:       time.Now,
	}
}

// TrackOpen registers an open handle on path and returns its id. Disabled
// trackers return 0 and ignore the matching close.
func (ft *Tracker) TrackOpen(path string) uint64 {
	ft.mu.Lock()
	if !ft.enabled {
		ft.mu.Unlock()
		return 0
	}

	ft.next++
	info := FileInfo{
		Path:     path,
		Handle:   ft.next,
		OpenedAt: ft.now(),
	}
	if ft.stackTraces {
		var pcs [16]uintptr
		n := runtime.Callers(2, pcs[:])
		info.StackTrace = pcs[:n]
	}
	ft.openFiles[info.Handle] = info
	ft.mu.Unlock()

	if ft.eventBus != nil {
		ft.eventBus.Publish("file_opened", info, 0)
	}
	return info.Handle
}

func (ft *Tracker) TrackClose(handle uint64) {
	if handle == 0 {
		return
	}

	ft.mu.Lock()
	info, exists := ft.openFiles[handle]
	if exists {
		delete(ft.openFiles, handle)
	}
	ft.mu.Unlock()

	if exists && ft.eventBus != nil {
		ft.eventBus.Publish("file_closed", info, ft.now().Sub(info.OpenedAt))
	}
}

func (ft *Tracker) OpenCount() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return len(ft.openFiles)
}

func (ft *Tracker) GetOpenFiles() []FileInfo {
	ft.mu.RLock()
	defer ft.mu.RUnlock()

	result := make([]FileInfo, 0, len(ft.openFiles))
	for _, v := range ft.openFiles {
		result = append(result, v)
	}
	return result
}

// DetectLeaks lists handles held longer than maxAge.
func (ft *Tracker) DetectLeaks(maxAge time.Duration) []FileInfo {
	ft.mu.RLock()
	defer ft.mu.RUnlock()

	threshold := ft.now().Add(-maxAge)
	var leaks []FileInfo

	for _, info := range ft.openFiles {
		if !info.OpenedAt.After(threshold) {
			leaks = append(leaks, info)
		}
	}

	return leaks
}

func (ft *Tracker) SetEnabled(enabled bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.enabled = enabled
}

func (ft *Tracker) SetStackTraces(enabled bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.stackTraces = enabled
}
