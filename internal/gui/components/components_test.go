package components

import (
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retro-zip/internal/archive"
)

func sampleEntries() []archive.Entry {
	mod := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	return []archive.Entry{
		{Name: "readme.txt", Size: 2048, CompressedSize: 512, Modified: mod, CRC32: 0xdeadbeef},
		{Name: "docs/guide.md", Size: 100, CompressedSize: 100, Modified: mod, CRC32: 1, Encrypted: true},
		{Name: "empty.bin", Modified: mod},
	}
}

func TestMarqueeFrame(t *testing.T) {
	assert.Equal(t, "abcd", MarqueeFrame("abcdef", 0, 4))
	assert.Equal(t, "cdef ab", MarqueeFrame("abcdef", 2, 10))
	assert.Equal(t, MarqueeFrame("abcdef", 1, 7), MarqueeFrame("abcdef", 7, 7), "position wraps around")
	assert.Equal(t, "", MarqueeFrame("", 3, 10))
	assert.Equal(t, "", MarqueeFrame("abc", 0, 0))
	assert.Len(t, []rune(MarqueeFrame(MarqueeText, 5, MarqueeWidth)), MarqueeWidth)
}

func TestCellText(t *testing.T) {
	entries := sampleEntries()

	assert.Equal(t, "readme.txt", CellText(entries[0], 0))
	assert.Equal(t, "2.0 KB", CellText(entries[0], 1))
	assert.Equal(t, "512.0 B", CellText(entries[0], 2))
	assert.Equal(t, "75.0%", CellText(entries[0], 3))
	assert.Equal(t, "2024-03-09 14:05", CellText(entries[0], 4))
	assert.Equal(t, "DEADBEEF", CellText(entries[0], 5))
	assert.Equal(t, "🔒 docs/guide.md", CellText(entries[1], 0))
	assert.Equal(t, "-", CellText(entries[2], 3))
	assert.Equal(t, "", CellText(entries[0], 9))
}

func TestFileTableToggleSelection(t *testing.T) {
	test.NewTempApp(t)

	ft := NewFileTable()
	test.NewTempWindow(t, ft.Widget())

	var counts []int
	ft.SetSelectionHandler(func(count int) { counts = append(counts, count) })
	ft.SetEntries(sampleEntries())

	ft.Widget().Select(widget.TableCellID{Row: 0, Col: 2})
	ft.Widget().Select(widget.TableCellID{Row: 2, Col: 0})
	assert.Equal(t, []string{"readme.txt", "empty.bin"}, ft.Selected())

	ft.Widget().Select(widget.TableCellID{Row: 0, Col: 1})
	assert.Equal(t, []string{"empty.bin"}, ft.Selected())
	assert.Equal(t, []int{1, 2, 1}, counts)

	ft.SelectAll()
	assert.Len(t, ft.Selected(), 3)

	ft.ClearSelection()
	assert.Empty(t, ft.Selected())
}

func TestFileTableKeepsSurvivingSelection(t *testing.T) {
	test.NewTempApp(t)

	ft := NewFileTable()
	ft.SetEntries(sampleEntries())
	ft.SelectAll()

	ft.SetEntries(sampleEntries()[:1])
	assert.Equal(t, []string{"readme.txt"}, ft.Selected())
	assert.Len(t, ft.Entries(), 1)
}

func TestDetailsPanelStats(t *testing.T) {
	test.NewTempApp(t)

	p := NewDetailsPanel()
	assert.Equal(t, "-|-|-|-", p.StatsText())

	stats := archive.StatsOf(sampleEntries()[:1])
	p.SetStats(&stats)
	assert.Equal(t, "1|2.0 KB|512.0 B|75.0%", p.StatsText())

	p.SetStats(nil)
	assert.Equal(t, "-|-|-|-", p.StatsText())

	p.SetArchive("/tmp/a.zip")
	assert.Equal(t, "/tmp/a.zip", p.ArchiveText())
	p.SetArchive("")
	assert.Equal(t, "[No archive loaded]", p.ArchiveText())
}

func TestDetailsPanelCompression(t *testing.T) {
	test.NewTempApp(t)

	p := NewDetailsPanel()
	assert.Equal(t, archive.CompressionDeflate, p.Compression())
	assert.Equal(t, archive.DefaultLevel, p.Level())

	p.SetCompression(archive.CompressionZstd, 42)
	assert.Equal(t, archive.CompressionZstd, p.Compression())
	assert.Equal(t, archive.MaxLevel, p.Level())

	p.SetPassword("hunter2")
	p.SetEncrypt(true)
	assert.Equal(t, "hunter2", p.Password())
	assert.True(t, p.Encrypt())
}

func TestDetailsPanelRecent(t *testing.T) {
	test.NewTempApp(t)

	p := NewDetailsPanel()
	test.NewTempWindow(t, p.GetContainer())

	var opened string
	p.SetRecentHandler(func(path string) { opened = path })
	p.SetRecent([]string{"/data/one.zip", "/data/two.zip"})

	p.SelectRecent(1)
	assert.Equal(t, "/data/two.zip", opened)
}

func TestStatusBar(t *testing.T) {
	test.NewTempApp(t)

	sb := NewStatusBar()
	assert.Equal(t, ReadyStatus, sb.Status())

	sb.SetStatus("Extracting...")
	assert.Equal(t, "Extracting...", sb.Status())

	sb.SetProgress(0.5)
	assert.InDelta(t, 0.5, sb.Progress(), 1e-9)
	sb.SetProgress(3)
	assert.InDelta(t, 1.0, sb.Progress(), 1e-9)
	sb.SetProgress(-1)
	assert.InDelta(t, 0.0, sb.Progress(), 1e-9)
}

func TestToolbarDispatch(t *testing.T) {
	test.NewTempApp(t)

	tb := NewToolbar(color.Black)
	var calls []string
	tb.SetHandlers(ToolbarHandlers{
		New:    func() { calls = append(calls, "new") },
		Delete: func() { calls = append(calls, "delete") },
	})

	require.NotNil(t, tb.Button("New"))
	require.NotNil(t, tb.Button("Extract All"))
	assert.Nil(t, tb.Button("Frobnicate"))

	test.Tap(tb.Button("New"))
	test.Tap(tb.Button("Delete"))
	test.Tap(tb.Button("Help"))
	assert.Equal(t, []string{"new", "delete"}, calls)
	assert.Len(t, tb.Buttons, 10)
}
