package gui

import (
	"fmt"
	"os"
	"path/filepath"

	"retro-zip/internal/archive"
	"retro-zip/internal/settings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	viewerWidth  = 700
	viewerHeight = 500
)

var zipFilter = storage.NewExtensionFileFilter([]string{".zip", ".ZIP"})

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})
	m.showMessage(title, err.Error(), theme.ErrorIcon())
}

func (m *Manager) ShowWarning(title, message string) {
	m.logger.Warning("GUIManager", message, map[string]interface{}{
		"title": title,
	})
	m.showMessage(title, message, theme.WarningIcon())
}

func (m *Manager) ShowInfo(title, message string) {
	dialog.ShowInformation(title, message, m.window)
}

func (m *Manager) showMessage(title, message string, icon fyne.Resource) {
	label := widget.NewLabel(message)
	label.Wrapping = fyne.TextWrapWord
	content := container.NewBorder(nil, nil, widget.NewIcon(icon), nil, label)

	d := dialog.NewCustom(title, "OK", content, m.window)
	d.Resize(fyne.NewSize(380, 160))
	d.Show()
}

// ShowText opens a separate monospaced viewer window.
func (m *Manager) ShowText(title, text string) {
	viewer := m.app.NewWindow(title)

	grid := widget.NewTextGridFromString(text)
	grid.ShowLineNumbers = false
	closeButton := widget.NewButton("Close", viewer.Close)
	closeButton.Importance = widget.HighImportance

	viewer.SetContent(container.NewBorder(
		nil,
		container.NewCenter(closeButton),
		nil, nil,
		container.NewScroll(grid),
	))
	viewer.Resize(fyne.NewSize(viewerWidth, viewerHeight))
	viewer.Show()
}

func (m *Manager) Confirm(title, message string, onResult func(bool)) {
	dialog.ShowConfirm(title, message, onResult, m.window)
}

// ChooseSaveArchive asks for a new archive path. The dialog creates the
// chosen file, which is removed again when the caller will append ".zip".
func (m *Manager) ChooseSaveArchive(dir string, onChosen func(path string)) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			m.ShowError("Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if filepath.Ext(path) == "" {
			os.Remove(path)
		}
		onChosen(path)
	}, m.window)
	d.SetFileName("archive.zip")
	d.SetFilter(zipFilter)
	m.setLocation(d, dir)
	d.Show()
}

func (m *Manager) ChooseOpenArchive(dir string, onChosen func(path string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			m.ShowError("Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onChosen(path)
	}, m.window)
	d.SetFilter(zipFilter)
	m.setLocation(d, dir)
	d.Show()
}

// ChooseFiles picks a single file; several files arrive by drag and drop.
func (m *Manager) ChooseFiles(dir string, onChosen func(paths []string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			m.ShowError("Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onChosen([]string{path})
	}, m.window)
	m.setLocation(d, dir)
	d.Show()
}

func (m *Manager) ChooseFolder(dir string, onChosen func(path string)) {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			m.ShowError("Error", err)
			return
		}
		if uri == nil {
			return
		}
		onChosen(uri.Path())
	}, m.window)
	m.setLocation(d, dir)
	d.Show()
}

func (m *Manager) setLocation(d *dialog.FileDialog, dir string) {
	if dir == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		m.logger.Debug("GUIManager", "dialog location unavailable", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
		return
	}
	d.SetLocation(lister)
}

// ShowOptions edits a copy of current and hands it to onSave on "Save".
func (m *Manager) ShowOptions(current settings.Settings, onSave func(settings.Settings)) {
	showHidden := widget.NewCheck("Show hidden files", nil)
	showHidden.SetChecked(current.ShowHidden)
	confirmOverwrite := widget.NewCheck("Confirm before overwriting", nil)
	confirmOverwrite.SetChecked(current.ConfirmOverwrite)
	rememberPassword := widget.NewCheck("Remember password", nil)
	rememberPassword.SetChecked(current.RememberPassword)

	methods := make([]string, 0, len(archive.Compressions))
	for _, c := range archive.Compressions {
		methods = append(methods, string(c))
	}
	method := widget.NewSelect(methods, nil)
	method.SetSelected(string(current.Compression()))

	levelLabel := widget.NewLabel("")
	level := widget.NewSlider(archive.MinLevel, archive.MaxLevel)
	level.Step = 1
	level.OnChanged = func(v float64) {
		levelLabel.SetText(fmt.Sprintf("%d", int(v)))
	}
	level.SetValue(float64(archive.ClampLevel(current.CompressionLevel)))

	items := []*widget.FormItem{
		widget.NewFormItem("", showHidden),
		widget.NewFormItem("", confirmOverwrite),
		widget.NewFormItem("", rememberPassword),
		widget.NewFormItem("Method", method),
		widget.NewFormItem("Level", container.NewBorder(nil, nil, nil, levelLabel, level)),
	}

	d := dialog.NewForm("═══ SETTINGS ═══", "💾 Save", "❌ Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		next := current
		next.ShowHidden = showHidden.Checked
		next.ConfirmOverwrite = confirmOverwrite.Checked
		next.RememberPassword = rememberPassword.Checked
		next.CompressionMethod = method.Selected
		next.CompressionLevel = int(level.Value)

		m.SetCompression(next.Compression(), next.CompressionLevel)
		onSave(next)
	}, m.window)
	d.Resize(fyne.NewSize(400, 320))
	d.Show()
}
