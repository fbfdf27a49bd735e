package gui

import (
	"retro-zip/internal/archive"
	"retro-zip/internal/gui/components"
	"retro-zip/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Actions are the user commands the window can trigger.
type Actions struct {
	New        func()
	Open       func()
	Close      func()
	Add        func()
	Extract    func()
	ExtractAll func()
	Delete     func()
	View       func()
	Properties func()
	Info       func()
	Options    func()
	Help       func()
	SelectAll  func()
	Refresh    func()
	Drop       func(paths []string)
	Selection  func(count int)
	Recent     func(path string)
}

// Manager owns the main window layout. Its View methods must be called on
// the UI goroutine.
type Manager struct {
	app        fyne.App
	window     fyne.Window
	logger     logger.Logger
	isShutdown bool

	banner  *components.Banner
	toolbar *components.Toolbar
	table   *components.FileTable
	details *components.DetailsPanel
	status  *components.StatusBar

	actions Actions
}

func NewManager(app fyne.App, window fyne.Window, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NoOpLogger{}
	}

	manager := &Manager{
		app:    app,
		window: window,
		logger: log,
		banner: components.NewBanner("RETRO ZIP UTILITY", components.BannerColors{
			Background: ColorNavy,
			Title:      ColorYellow,
			Accent:     ColorMagenta,
		}),
		toolbar: components.NewToolbar(ColorTeal),
		table:   components.NewFileTable(),
		details: components.NewDetailsPanel(),
		status:  components.NewStatusBar(),
	}

	window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		manager.onDropped(uris)
	})

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"columns": 6,
	})

	return manager, nil
}

// SetActions wires the toolbar, menus and panels to actions.
func (m *Manager) SetActions(actions Actions) {
	m.actions = actions

	m.toolbar.SetHandlers(components.ToolbarHandlers{
		New:        actions.New,
		Open:       actions.Open,
		Add:        actions.Add,
		Extract:    actions.Extract,
		ExtractAll: actions.ExtractAll,
		Delete:     actions.Delete,
		View:       actions.View,
		Info:       actions.Info,
		Options:    actions.Options,
		Help:       actions.Help,
	})
	m.table.SetSelectionHandler(func(count int) {
		if actions.Selection != nil {
			actions.Selection(count)
		}
	})
	m.details.SetRecentHandler(func(path string) {
		if actions.Recent != nil {
			actions.Recent(path)
		}
	})

	m.window.SetMainMenu(m.buildMenu())
}

func (m *Manager) buildMenu() *fyne.MainMenu {
	item := func(label string, fn func()) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			if fn != nil {
				fn()
			}
		})
	}

	file := fyne.NewMenu("File",
		item("New Archive...", m.actions.New),
		item("Open Archive...", m.actions.Open),
		item("Close Archive", m.actions.Close),
		fyne.NewMenuItemSeparator(),
		item("Add Files...", m.actions.Add),
		item("Extract Selected...", m.actions.Extract),
		item("Extract All...", m.actions.ExtractAll),
	)
	edit := fyne.NewMenu("Edit",
		item("Select All", m.actions.SelectAll),
		item("View File", m.actions.View),
		item("Properties", m.actions.Properties),
		fyne.NewMenuItemSeparator(),
		item("Delete", m.actions.Delete),
		fyne.NewMenuItemSeparator(),
		item("Refresh", m.actions.Refresh),
		item("Options...", m.actions.Options),
	)
	help := fyne.NewMenu("Help",
		item("Archive Info", m.actions.Info),
		item("Help & About", m.actions.Help),
	)
	return fyne.NewMainMenu(file, edit, help)
}

func (m *Manager) GetMainContainer() *fyne.Container {
	listing := container.NewBorder(nil, nil, nil, nil, m.table.Widget())
	split := container.NewHSplit(listing, m.details.GetContainer())
	split.Offset = 0.72

	header := container.NewVBox(
		m.banner.GetContainer(),
		m.toolbar.GetContainer(),
	)

	m.banner.Start()

	return container.NewBorder(header, m.status.GetContainer(), nil, nil, split)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

// SetCompression presets the compression controls from saved settings.
func (m *Manager) SetCompression(c archive.Compression, level int) {
	m.details.SetCompression(c, level)
}

func (m *Manager) onDropped(uris []fyne.URI) {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() != "file" {
			continue
		}
		paths = append(paths, u.Path())
	}

	m.logger.Debug("GUIManager", "files dropped", map[string]interface{}{
		"count": len(paths),
	})

	if len(paths) > 0 && m.actions.Drop != nil {
		m.actions.Drop(paths)
	}
}

func (m *Manager) SetArchive(path string) {
	m.details.SetArchive(path)
	m.table.ClearSelection()
}

func (m *Manager) SetEntries(entries []archive.Entry) {
	m.table.SetEntries(entries)
	m.logger.Debug("GUIManager", "listing updated", map[string]interface{}{
		"entries": len(entries),
	})
}

func (m *Manager) SetStats(stats *archive.Stats) {
	m.details.SetStats(stats)
}

func (m *Manager) SetStatus(status string) {
	m.status.SetStatus(status)
}

func (m *Manager) SetProgress(fraction float64) {
	m.status.SetProgress(fraction)
}

func (m *Manager) SetRecent(paths []string) {
	m.details.SetRecent(paths)
}

func (m *Manager) SelectedEntries() []string {
	return m.table.Selected()
}

func (m *Manager) SelectAll() {
	m.table.SelectAll()
}

// AddOptions reads the compression panel; the password only applies
// when encryption is ticked.
func (m *Manager) AddOptions() archive.AddOptions {
	opts := archive.AddOptions{
		Compression: m.details.Compression(),
		Level:       m.details.Level(),
	}
	if m.details.Encrypt() {
		opts.Password = m.details.Password()
	}
	return opts
}

func (m *Manager) Password() string {
	return m.details.Password()
}

func (m *Manager) ClearPassword() {
	m.details.SetPassword("")
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.banner.Stop()
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
