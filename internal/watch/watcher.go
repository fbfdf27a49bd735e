package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"retro-zip/internal/logger"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reports outside changes to a single file. fsnotify watches the
// parent directory so the rename that replaces the file is seen too.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   logger.Logger
	onChange func(path string)
	debounce time.Duration

	mu            sync.Mutex
	path          string
	dir           string
	suppressUntil time.Time
	timer         *time.Timer

	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

func New(onChange func(path string), log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = &logger.NoOpLogger{}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:       fw,
		logger:   log,
		onChange: onChange,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go w.loop()
	return w, nil
}

// Watch switches the watcher to path, dropping any previous target.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dir != "" && w.dir != dir {
		w.fs.Remove(w.dir)
	}
	if w.dir != dir {
		if err := w.fs.Add(dir); err != nil {
			w.path, w.dir = "", ""
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.path, w.dir = abs, dir

	w.logger.Debug("Watcher", "watching archive", map[string]interface{}{
		"path": abs,
	})
	return nil
}

func (w *Watcher) Unwatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dir != "" {
		w.fs.Remove(w.dir)
	}
	w.path, w.dir = "", ""
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Suppress ignores events for d, covering writes the application makes itself.
func (w *Watcher) Suppress(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	until := w.now().Add(d)
	if until.After(w.suppressUntil) {
		w.suppressUntil = until
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher", err, nil)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.path == "" || filepath.Clean(event.Name) != w.path {
		return
	}
	if w.now().Before(w.suppressUntil) {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	path := w.path
	w.timer = time.AfterFunc(w.debounce, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	current := w.path
	suppressed := w.now().Before(w.suppressUntil)
	w.timer = nil
	w.mu.Unlock()

	if current != path || suppressed || w.onChange == nil {
		return
	}
	w.logger.Info("Watcher", "archive changed on disk", map[string]interface{}{
		"path": path,
	})
	w.onChange(path)
}

func (w *Watcher) Shutdown() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.Unwatch()
		if err := w.fs.Close(); err != nil {
			w.logger.Error("Watcher", err, nil)
		}
	})
}
