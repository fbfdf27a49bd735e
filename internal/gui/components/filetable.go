package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"retro-zip/internal/archive"
)

var columnTitles = []string{"📄 File Name", "📊 Size", "📦 Packed", "📈 Ratio", "📅 Modified", "🔢 CRC-32"}

var columnWidths = []float32{240, 90, 90, 70, 150, 90}

// FileTable lists archive entries. Clicking a row toggles it in the selection.
type FileTable struct {
	table    *widget.Table
	entries  []archive.Entry
	selected map[string]bool

	onSelectionChanged func(count int)
}

func NewFileTable() *FileTable {
	ft := &FileTable{selected: make(map[string]bool)}

	ft.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(ft.entries), len(columnTitles) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		ft.updateCell,
	)
	ft.table.ShowHeaderColumn = false
	ft.table.CreateHeader = func() fyne.CanvasObject {
		label := widget.NewLabel("")
		label.TextStyle = fyne.TextStyle{Bold: true}
		return label
	}
	ft.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(columnTitles) {
			o.(*widget.Label).SetText(columnTitles[id.Col])
		}
	}
	for col, width := range columnWidths {
		ft.table.SetColumnWidth(col, width)
	}
	ft.table.OnSelected = ft.toggle

	return ft
}

func (ft *FileTable) Widget() *widget.Table {
	return ft.table
}

func (ft *FileTable) SetSelectionHandler(handler func(count int)) {
	ft.onSelectionChanged = handler
}

// SetEntries replaces the listing. Selected names that survive stay selected.
func (ft *FileTable) SetEntries(entries []archive.Entry) {
	ft.entries = entries

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name] = true
	}
	for name := range ft.selected {
		if !present[name] {
			delete(ft.selected, name)
		}
	}
	ft.table.Refresh()
}

func (ft *FileTable) Entries() []archive.Entry {
	return ft.entries
}

// Selected returns the selected names in listing order.
func (ft *FileTable) Selected() []string {
	var names []string
	for _, e := range ft.entries {
		if ft.selected[e.Name] {
			names = append(names, e.Name)
		}
	}
	return names
}

func (ft *FileTable) SelectAll() {
	for _, e := range ft.entries {
		ft.selected[e.Name] = true
	}
	ft.table.Refresh()
	ft.notify()
}

func (ft *FileTable) ClearSelection() {
	ft.selected = make(map[string]bool)
	ft.table.Refresh()
	ft.notify()
}

func (ft *FileTable) toggle(id widget.TableCellID) {
	if id.Row < 0 || id.Row >= len(ft.entries) {
		return
	}
	name := ft.entries[id.Row].Name
	if ft.selected[name] {
		delete(ft.selected, name)
	} else {
		ft.selected[name] = true
	}
	ft.table.Unselect(id)
	ft.table.Refresh()
	ft.notify()
}

func (ft *FileTable) notify() {
	if ft.onSelectionChanged != nil {
		ft.onSelectionChanged(len(ft.selected))
	}
}

func (ft *FileTable) updateCell(id widget.TableCellID, o fyne.CanvasObject) {
	label := o.(*widget.Label)
	if id.Row < 0 || id.Row >= len(ft.entries) {
		label.SetText("")
		return
	}

	entry := ft.entries[id.Row]
	if ft.selected[entry.Name] {
		label.Importance = widget.HighImportance
		label.TextStyle = fyne.TextStyle{Bold: true}
	} else {
		label.Importance = widget.MediumImportance
		label.TextStyle = fyne.TextStyle{}
	}
	label.Alignment = fyne.TextAlignLeading
	if id.Col >= 1 && id.Col <= 3 {
		label.Alignment = fyne.TextAlignTrailing
	}
	label.SetText(CellText(entry, id.Col))
}

// CellText renders one column of an entry row.
func CellText(entry archive.Entry, col int) string {
	switch col {
	case 0:
		if entry.Encrypted {
			return "🔒 " + entry.Name
		}
		return entry.Name
	case 1:
		return archive.FormatSize(entry.Size)
	case 2:
		return archive.FormatSize(entry.CompressedSize)
	case 3:
		return archive.FormatRatio(entry)
	case 4:
		return archive.FormatDate(entry.Modified)
	case 5:
		return archive.FormatCRC(entry.CRC32)
	}
	return ""
}
