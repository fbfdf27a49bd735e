package components

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ToolbarHandlers are the toolbar button callbacks. Nil handlers are ignored.
type ToolbarHandlers struct {
	New        func()
	Open       func()
	Add        func()
	Extract    func()
	ExtractAll func()
	Delete     func()
	View       func()
	Info       func()
	Options    func()
	Help       func()
}

type Toolbar struct {
	container *fyne.Container
	Buttons   map[string]*widget.Button

	handlers ToolbarHandlers
}

// toolbar order and labels
var toolbarLabels = []string{
	"📁 New", "📂 Open", "➕ Add", "📤 Extract", "📦 Extract All",
	"🗑️ Delete", "🔍 View", "ℹ️ Info", "⚙️ Options", "❓ Help",
}

func NewToolbar(background color.Color) *Toolbar {
	toolbar := &Toolbar{Buttons: make(map[string]*widget.Button)}
	toolbar.setupToolbar(background)
	return toolbar
}

func (t *Toolbar) setupToolbar(background color.Color) {
	actions := []func(){
		func() { call(t.handlers.New) },
		func() { call(t.handlers.Open) },
		func() { call(t.handlers.Add) },
		func() { call(t.handlers.Extract) },
		func() { call(t.handlers.ExtractAll) },
		func() { call(t.handlers.Delete) },
		func() { call(t.handlers.View) },
		func() { call(t.handlers.Info) },
		func() { call(t.handlers.Options) },
		func() { call(t.handlers.Help) },
	}

	row := container.NewHBox()
	for i, label := range toolbarLabels {
		button := widget.NewButton(label, actions[i])
		button.Importance = widget.HighImportance
		t.Buttons[label] = button
		row.Add(button)
	}

	t.container = container.NewStack(
		canvas.NewRectangle(background),
		container.NewHScroll(container.NewPadded(row)),
	)
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetHandlers(handlers ToolbarHandlers) {
	t.handlers = handlers
}

// Button looks a button up by its label without the icon prefix.
func (t *Toolbar) Button(name string) *widget.Button {
	for label, button := range t.Buttons {
		if trimIcon(label) == name {
			return button
		}
	}
	return nil
}

func trimIcon(label string) string {
	for i, r := range label {
		if r == ' ' {
			return label[i+1:]
		}
	}
	return label
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
