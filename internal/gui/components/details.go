package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"retro-zip/internal/archive"
)

const noStat = "-"

// DetailsPanel is the quick panel to the right of the listing.
type DetailsPanel struct {
	container *fyne.Container

	archiveLabel *widget.Label
	filesLabel   *widget.Label
	sizeLabel    *widget.Label
	packedLabel  *widget.Label
	ratioLabel   *widget.Label

	methodSelect *widget.Select
	levelSlider  *widget.Slider
	levelLabel   *widget.Label

	encryptCheck  *widget.Check
	passwordEntry *widget.Entry

	recentList  *widget.List
	recentPaths []string
	onRecent    func(path string)
}

func NewDetailsPanel() *DetailsPanel {
	p := &DetailsPanel{}
	p.setupPanel()
	return p
}

func (p *DetailsPanel) setupPanel() {
	p.archiveLabel = widget.NewLabel("[No archive loaded]")
	p.archiveLabel.Truncation = fyne.TextTruncateEllipsis
	p.archiveLabel.Importance = widget.HighImportance

	dropLabel := widget.NewLabel("🎯 DROP FILES HERE 🎯\nDrag & Drop files to\nadd them to archive")
	dropLabel.Alignment = fyne.TextAlignCenter

	p.filesLabel = widget.NewLabel(noStat)
	p.sizeLabel = widget.NewLabel(noStat)
	p.packedLabel = widget.NewLabel(noStat)
	p.ratioLabel = widget.NewLabel(noStat)
	stats := widget.NewForm(
		widget.NewFormItem("Files", p.filesLabel),
		widget.NewFormItem("Size", p.sizeLabel),
		widget.NewFormItem("Packed", p.packedLabel),
		widget.NewFormItem("Ratio", p.ratioLabel),
	)

	options := make([]string, 0, len(archive.Compressions))
	for _, c := range archive.Compressions {
		options = append(options, string(c))
	}
	p.methodSelect = widget.NewSelect(options, nil)
	p.methodSelect.SetSelected(string(archive.CompressionDeflate))

	p.levelLabel = widget.NewLabel("")
	p.levelSlider = widget.NewSlider(archive.MinLevel, archive.MaxLevel)
	p.levelSlider.Step = 1
	p.levelSlider.OnChanged = func(value float64) {
		p.levelLabel.SetText(fmt.Sprintf("Level: %d", int(value)))
	}
	p.levelSlider.SetValue(archive.DefaultLevel)

	p.passwordEntry = widget.NewPasswordEntry()
	p.passwordEntry.SetPlaceHolder("Password")
	p.encryptCheck = widget.NewCheck("Encrypt archive", nil)

	p.recentList = widget.NewList(
		func() int { return len(p.recentPaths) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(p.recentPaths) {
				o.(*widget.Label).SetText(filepath.Base(p.recentPaths[id]))
			}
		},
	)
	p.recentList.OnSelected = func(id widget.ListItemID) {
		p.recentList.Unselect(id)
		if id < len(p.recentPaths) && p.onRecent != nil {
			p.onRecent(p.recentPaths[id])
		}
	}

	top := container.NewVBox(
		widget.NewLabelWithStyle("═══ QUICK PANEL ═══", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		p.archiveLabel,
		widget.NewCard("", "", dropLabel),
		widget.NewCard("📊 Archive Stats", "", stats),
		widget.NewCard("⚙️ Compression", "", container.NewVBox(p.methodSelect, p.levelLabel, p.levelSlider)),
		widget.NewCard("🔐 Password", "", container.NewVBox(p.passwordEntry, p.encryptCheck)),
		widget.NewLabelWithStyle("Recent archives", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)

	p.container = container.NewBorder(top, nil, nil, nil, p.recentList)
}

func (p *DetailsPanel) GetContainer() *fyne.Container {
	return p.container
}

func (p *DetailsPanel) SetArchive(path string) {
	if path == "" {
		p.archiveLabel.SetText("[No archive loaded]")
		return
	}
	p.archiveLabel.SetText(path)
}

func (p *DetailsPanel) ArchiveText() string {
	return p.archiveLabel.Text
}

// SetStats fills the stats card; nil resets every field.
func (p *DetailsPanel) SetStats(stats *archive.Stats) {
	if stats == nil {
		for _, l := range []*widget.Label{p.filesLabel, p.sizeLabel, p.packedLabel, p.ratioLabel} {
			l.SetText(noStat)
		}
		return
	}
	p.filesLabel.SetText(fmt.Sprintf("%d", stats.Files))
	p.sizeLabel.SetText(archive.FormatSize(stats.TotalSize))
	p.packedLabel.SetText(archive.FormatSize(stats.CompressedSize))
	p.ratioLabel.SetText(fmt.Sprintf("%.1f%%", stats.Ratio()))
}

// StatsText is the stats card as "files|size|packed|ratio".
func (p *DetailsPanel) StatsText() string {
	return strings.Join([]string{p.filesLabel.Text, p.sizeLabel.Text, p.packedLabel.Text, p.ratioLabel.Text}, "|")
}

func (p *DetailsPanel) SetCompression(c archive.Compression, level int) {
	p.methodSelect.SetSelected(string(c))
	p.levelSlider.SetValue(float64(archive.ClampLevel(level)))
}

func (p *DetailsPanel) Compression() archive.Compression {
	c, err := archive.ParseCompression(p.methodSelect.Selected)
	if err != nil {
		return archive.CompressionDeflate
	}
	return c
}

func (p *DetailsPanel) Level() int {
	return archive.ClampLevel(int(p.levelSlider.Value))
}

func (p *DetailsPanel) Password() string {
	return p.passwordEntry.Text
}

func (p *DetailsPanel) SetPassword(password string) {
	p.passwordEntry.SetText(password)
}

func (p *DetailsPanel) Encrypt() bool {
	return p.encryptCheck.Checked
}

func (p *DetailsPanel) SetEncrypt(on bool) {
	p.encryptCheck.SetChecked(on)
}

func (p *DetailsPanel) SetRecent(paths []string) {
	p.recentPaths = paths
	p.recentList.Refresh()
}

func (p *DetailsPanel) SetRecentHandler(handler func(path string)) {
	p.onRecent = handler
}

// SelectRecent acts as if the user clicked recent entry i.
func (p *DetailsPanel) SelectRecent(i int) {
	p.recentList.Select(i)
}
