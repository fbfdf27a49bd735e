package components

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
)

const (
	MarqueeText = ">>> Welcome to RETRO ZIP UTILITY! The BEST archive manager for your desktop! " +
		"Features: ZIP, UNZIP, Password Protection, Drag & Drop! <<<"
	MarqueeWidth    = 80
	marqueeInterval = 100 * time.Millisecond
)

// MarqueeFrame is the visible slice of text after scrolling pos runes.
func MarqueeFrame(text string, pos, width int) string {
	runes := []rune(text)
	if len(runes) == 0 || width <= 0 {
		return ""
	}
	if pos < 0 {
		pos = 0
	}
	pos %= len(runes)

	rotated := make([]rune, 0, len(runes)+1)
	rotated = append(rotated, runes[pos:]...)
	rotated = append(rotated, ' ')
	rotated = append(rotated, runes[:pos]...)
	if len(rotated) > width {
		rotated = rotated[:width]
	}
	return string(rotated)
}

type BannerColors struct {
	Background color.Color
	Title      color.Color
	Accent     color.Color
}

// Banner is the title strip with the scrolling marquee.
type Banner struct {
	container *fyne.Container
	marquee   *canvas.Text

	mu   sync.Mutex
	pos  int
	stop chan struct{}
}

func NewBanner(title string, colors BannerColors) *Banner {
	b := &Banner{}

	background := canvas.NewRectangle(colors.Background)

	heading := canvas.NewText(title, colors.Title)
	heading.TextSize = 24
	heading.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}

	leftStars := canvas.NewText("★ ★ ★", colors.Accent)
	leftStars.TextSize = 16
	rightStars := canvas.NewText("★ ★ ★", colors.Accent)
	rightStars.TextSize = 16

	b.marquee = canvas.NewText(MarqueeFrame(MarqueeText, 0, MarqueeWidth), colors.Accent)
	b.marquee.TextStyle = fyne.TextStyle{Monospace: true}
	b.marquee.Alignment = fyne.TextAlignCenter

	titleRow := container.NewHBox(
		leftStars,
		layout.NewSpacer(),
		heading,
		layout.NewSpacer(),
		rightStars,
	)

	b.container = container.NewStack(
		background,
		container.NewPadded(container.NewVBox(titleRow, b.marquee)),
	)
	return b
}

func (b *Banner) GetContainer() *fyne.Container {
	return b.container
}

// Text is the marquee frame currently shown.
func (b *Banner) Text() string {
	return b.marquee.Text
}

// Start scrolls the marquee until Stop is called.
func (b *Banner) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return
	}
	b.stop = make(chan struct{})
	go b.animate(b.stop)
}

func (b *Banner) animate(stop <-chan struct{}) {
	ticker := time.NewTicker(marqueeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.mu.Lock()
			b.pos++
			frame := MarqueeFrame(MarqueeText, b.pos, MarqueeWidth)
			b.mu.Unlock()

			fyne.Do(func() {
				b.marquee.Text = frame
				b.marquee.Refresh()
			})
		}
	}
}

func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
}
