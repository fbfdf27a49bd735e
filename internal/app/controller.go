package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"retro-zip/internal/archive"
	"retro-zip/internal/debug"
	"retro-zip/internal/debug/eventbus"
	"retro-zip/internal/history"
	"retro-zip/internal/logger"
	"retro-zip/internal/settings"
	"retro-zip/internal/watch"
	"retro-zip/internal/worker"
)

// ownWriteWindow hides the rename events our own rewrites produce from the watcher.
const ownWriteWindow = 2 * time.Second

// Deps are the collaborators a Controller drives. History and Watcher are optional.
type Deps struct {
	View     View
	Post     worker.Poster
	Runner   *worker.Runner
	Settings *settings.Store
	History  *history.Store
	Watcher  *watch.Watcher
	Debug    debug.Coordinator
}

// Controller turns user actions into archive calls and results into view updates.
type Controller struct {
	view     View
	post     worker.Poster
	runner   *worker.Runner
	settings *settings.Store
	history  *history.Store
	watcher  *watch.Watcher
	debug    debug.Coordinator
	logger   logger.Logger

	mu      sync.RWMutex
	current *archive.Archive
}

func NewController(deps Deps) *Controller {
	post := deps.Post
	if post == nil {
		post = func(fn func()) { fn() }
	}
	c := &Controller{
		view:     deps.View,
		post:     post,
		runner:   deps.Runner,
		settings: deps.Settings,
		history:  deps.History,
		watcher:  deps.Watcher,
		debug:    deps.Debug,
		logger:   deps.Debug.Logger(),
	}
	if c.runner == nil {
		c.runner = worker.NewRunner(post, c.logger)
	}
	return c
}

// Current returns the open archive or nil.
func (c *Controller) Current() *archive.Archive {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Controller) setCurrent(a *archive.Archive) {
	c.mu.Lock()
	prev := c.current
	c.current = a
	c.mu.Unlock()

	if prev != nil && prev != a {
		prev.Close()
	}
}

// activate makes a the open archive and records it in history and settings.
func (c *Controller) activate(a *archive.Archive) {
	a.SetTracker(c.debug.Files())
	c.setCurrent(a)
	c.view.SetArchive(a.Path())
	c.refresh()

	c.settings.Update(func(s *settings.Settings) {
		s.LastDirectory = filepath.Dir(a.Path())
	})

	if c.history != nil {
		if err := c.history.Add(a.Path()); err != nil {
			c.logger.Error("Controller", err, map[string]interface{}{"path": a.Path()})
		}
		c.refreshRecent()
	}

	if c.watcher != nil {
		if err := c.watcher.Watch(a.Path()); err != nil {
			c.logger.Warning("Controller", "cannot watch archive", map[string]interface{}{
				"path":  a.Path(),
				"error": err.Error(),
			})
		}
	}
}

// refresh reloads the listing and the stats of the open archive.
func (c *Controller) refresh() {
	a := c.Current()
	if a == nil {
		c.view.SetEntries(nil)
		c.view.SetStats(nil)
		return
	}

	ctx := c.debug.StartOperation(context.Background(), "list")
	entries, err := a.Entries()
	c.debug.EndOperation(ctx)
	if err != nil {
		c.view.SetStatus("Error reading archive: " + err.Error())
		c.logger.Error("Controller", err, map[string]interface{}{"path": a.Path()})
		return
	}

	stats := archive.StatsOf(entries)
	if !c.settings.Get().ShowHidden {
		entries = archive.FilterHidden(entries)
	}
	c.view.SetEntries(entries)
	c.view.SetStats(&stats)
}

func (c *Controller) refreshRecent() {
	if c.history == nil {
		return
	}
	records, err := c.history.Recent(history.Limit)
	if err != nil {
		c.logger.Error("Controller", err, nil)
		return
	}
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	c.view.SetRecent(paths)
}

func (c *Controller) suppressWatch() {
	if c.watcher != nil {
		c.watcher.Suppress(ownWriteWindow)
	}
}

func (c *Controller) lastDirectory() string {
	return c.settings.Get().LastDirectory
}

func (c *Controller) publish(eventType string, a *archive.Archive, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["path"] = a.Path()
	c.debug.Publish(eventType, data)
}

// HandleExternalChange refreshes the listing when the open archive changes on disk.
func (c *Controller) HandleExternalChange(path string) {
	c.post(func() {
		a := c.Current()
		if a == nil || !samePath(a.Path(), path) {
			return
		}
		c.publish(eventbus.ArchiveChanged, a, nil)
		c.refresh()
		c.view.SetStatus("Archive changed on disk: " + filepath.Base(path))
	})
}

// Shutdown persists settings and releases the open archive.
func (c *Controller) Shutdown() {
	if err := c.settings.Save(); err != nil {
		c.logger.Error("Controller", err, map[string]interface{}{"path": c.settings.Path()})
	}
	c.setCurrent(nil)
	c.logger.Info("Controller", "controller stopped", nil)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
