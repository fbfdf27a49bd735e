package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const ReadyStatus = "Ready - Select an archive to begin!"

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	progressBar *widget.ProgressBar
	indicator   *widget.Label
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel(ReadyStatus)
	statusLabel.Truncation = fyne.TextTruncateEllipsis

	progressBar := widget.NewProgressBar()
	progressBar.Min = 0
	progressBar.Max = 1
	progressBar.TextFormatter = func() string { return "" }

	indicator := widget.NewLabel("●")
	indicator.Importance = widget.SuccessImportance

	progressHolder := container.NewGridWrap(fyne.NewSize(150, progressBar.MinSize().Height), progressBar)

	mainContainer := container.NewBorder(
		nil, nil,
		nil,
		container.NewHBox(indicator, progressHolder),
		statusLabel,
	)

	return &StatusBar{
		container:   mainContainer,
		statusLabel: statusLabel,
		progressBar: progressBar,
		indicator:   indicator,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

// SetProgress shows fraction in [0,1]; the indicator turns busy while work runs.
func (sb *StatusBar) SetProgress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	sb.progressBar.SetValue(fraction)

	busy := fraction > 0 && fraction < 1
	if busy {
		sb.indicator.Importance = widget.WarningImportance
	} else {
		sb.indicator.Importance = widget.SuccessImportance
	}
	sb.indicator.Refresh()
}

func (sb *StatusBar) Progress() float64 {
	return sb.progressBar.Value
}
