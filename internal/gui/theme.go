package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Classic 90s web palette.
var (
	ColorNavy    = color.NRGBA{R: 0x00, G: 0x00, B: 0x80, A: 0xff}
	ColorTeal    = color.NRGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xff}
	ColorSilver  = color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
	ColorShadow  = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	ColorMagenta = color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
	ColorLime    = color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	ColorYellow  = color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
	ColorCyan    = color.NRGBA{R: 0x00, G: 0xff, B: 0xff, A: 0xff}
	ColorRed     = color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	ColorBlack   = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	ColorWhite   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	ThemeClassic = "classic"
	ThemeSystem  = "system"
)

// RetroTheme is a light monospaced theme in the classic palette.
type RetroTheme struct{}

var _ fyne.Theme = (*RetroTheme)(nil)

func (RetroTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground, theme.ColorNameButton, theme.ColorNameMenuBackground,
		theme.ColorNameOverlayBackground:
		return ColorSilver
	case theme.ColorNameHeaderBackground:
		return ColorTeal
	case theme.ColorNameForeground:
		return ColorBlack
	case theme.ColorNameInputBackground:
		return ColorWhite
	case theme.ColorNameInputBorder, theme.ColorNameSeparator, theme.ColorNameDisabled:
		return ColorShadow
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return ColorNavy
	case theme.ColorNameForegroundOnPrimary:
		return ColorYellow
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x00, G: 0x80, B: 0x80, A: 0x60}
	case theme.ColorNameHover, theme.ColorNamePressed:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0x50}
	case theme.ColorNameSuccess:
		return ColorLime
	case theme.ColorNameWarning:
		return ColorMagenta
	case theme.ColorNameError:
		return ColorRed
	case theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	}
	return theme.DefaultTheme().Color(name, theme.VariantLight)
}

func (RetroTheme) Font(style fyne.TextStyle) fyne.Resource {
	style.Monospace = true
	return theme.DefaultTheme().Font(style)
}

func (RetroTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (RetroTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

// ApplyTheme installs the retro theme unless name asks for the system one.
func ApplyTheme(app fyne.App, name string) {
	if name == ThemeSystem {
		return
	}
	app.Settings().SetTheme(&RetroTheme{})
}
