package app

import (
	"retro-zip/internal/debug"
	"retro-zip/internal/gui"
	"retro-zip/internal/history"
	"retro-zip/internal/settings"
	"retro-zip/internal/watch"
	"retro-zip/internal/worker"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName      = "★ RETRO ZIP UTILITY v1.0 ★"
	AppID        = "com.retrozip.utility"
	AppVersion   = "1.0.0"
	WindowWidth  = 900
	WindowHeight = 700
)

var _ View = (*gui.Manager)(nil)

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	guiManager *gui.Manager
	controller *Controller
	debugCoord *debug.DebugCoordinator
	lifecycle  *Lifecycle
}

func NewApplication() (*Application, error) {
	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)

	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	debugConfig := debug.ConfigFromEnv()
	debugCoord := debug.NewCoordinator(debugConfig)
	logger := debugCoord.Logger()

	logger.Info("Application", "starting application", map[string]interface{}{
		"version":      AppVersion,
		"json_logs":    debugConfig.UseJSONLogging,
		"file_tracker": debugConfig.EnableFileTracking,
	})

	store := settings.NewStore(settings.DefaultPath())
	if err := store.Load(); err != nil {
		logger.Warning("Application", "settings file ignored", map[string]interface{}{
			"path":  store.Path(),
			"error": err.Error(),
		})
	}

	gui.ApplyTheme(fyneApp, store.Get().Theme)

	guiManager, err := gui.NewManager(fyneApp, window, logger)
	if err != nil {
		return nil, err
	}
	guiManager.SetCompression(store.Get().Compression(), store.Get().CompressionLevel)

	hist, err := history.Open(history.DefaultPath(), logger)
	if err != nil {
		logger.Warning("Application", "recent archive history disabled", map[string]interface{}{
			"error": err.Error(),
		})
		hist = nil
	}

	runner := worker.NewRunner(fyne.Do, logger)

	var controller *Controller
	watcher, err := watch.New(func(path string) { controller.HandleExternalChange(path) }, logger)
	if err != nil {
		logger.Warning("Application", "archive watching disabled", map[string]interface{}{
			"error": err.Error(),
		})
		watcher = nil
	}

	controller = NewController(Deps{
		View:     guiManager,
		Post:     fyne.Do,
		Runner:   runner,
		Settings: store,
		History:  hist,
		Watcher:  watcher,
		Debug:    debugCoord,
	})

	lifecycle := NewLifecycle(logger)
	lifecycle.Register("debug", debugCoord)
	if hist != nil {
		lifecycle.Register("history", hist)
	}
	lifecycle.Register("controller", controller)
	if watcher != nil {
		lifecycle.Register("watcher", watcher)
	}
	lifecycle.Register("worker", runner)
	lifecycle.Register("gui", guiManager)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		guiManager: guiManager,
		controller: controller,
		debugCoord: debugCoord,
		lifecycle:  lifecycle,
	}

	application.setupHandlers()

	logger.Info("Application", "initialization complete", nil)
	return application, nil
}

func (a *Application) setupHandlers() {
	c := a.controller
	a.guiManager.SetActions(gui.Actions{
		New:        c.NewArchive,
		Open:       c.OpenArchive,
		Close:      c.CloseArchive,
		Add:        c.AddFiles,
		Extract:    c.ExtractSelected,
		ExtractAll: c.ExtractAll,
		Delete:     c.DeleteSelected,
		View:       c.ViewSelected,
		Properties: c.ShowProperties,
		Info:       c.ShowArchiveInfo,
		Options:    c.ShowOptions,
		Help:       c.ShowHelp,
		SelectAll:  c.SelectAll,
		Refresh:    c.Refresh,
		Drop:       c.HandleDrop,
		Selection:  c.SelectionChanged,
		Recent:     c.OpenRecent,
	})
}

// Run shows the window and blocks until it closes. A non-empty path is
// opened once the window is up.
func (a *Application) Run(path string) error {
	logger := a.debugCoord.Logger()

	a.window.SetCloseIntercept(func() {
		logger.Info("Application", "shutdown requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})

	a.lifecycle.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.controller.Refresh()
	if path != "" {
		a.controller.OpenPath(path)
	}

	a.window.Show()
	logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.lifecycle.Shutdown()
	return nil
}
