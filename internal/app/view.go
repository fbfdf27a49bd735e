package app

import (
	"retro-zip/internal/archive"
	"retro-zip/internal/settings"
)

// View is everything the controller needs from the window. Callbacks passed
// to the Choose*/Confirm/ShowOptions methods run on the UI goroutine and
// are skipped when the user cancels.
type View interface {
	SetArchive(path string)
	SetEntries(entries []archive.Entry)
	// SetStats clears the statistics panel when stats is nil.
	SetStats(stats *archive.Stats)
	SetStatus(status string)
	SetProgress(fraction float64)
	SetRecent(paths []string)

	SelectedEntries() []string
	SelectAll()
	AddOptions() archive.AddOptions
	Password() string
	ClearPassword()

	ShowError(title string, err error)
	ShowWarning(title, message string)
	ShowInfo(title, message string)
	ShowText(title, text string)
	Confirm(title, message string, onResult func(bool))

	ChooseSaveArchive(dir string, onChosen func(path string))
	ChooseOpenArchive(dir string, onChosen func(path string))
	ChooseFiles(dir string, onChosen func(paths []string))
	ChooseFolder(dir string, onChosen func(path string))
	ShowOptions(current settings.Settings, onSave func(settings.Settings))
}
