package app

import (
	"image/color"

	"board-tester/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BoardTesterTheme is the default theme recolored with the board tester
// palette. Buttons, focus rings and selections use the Layout Mode shape
// colors; error and warning text uses the status colors.
type BoardTesterTheme struct{}

var _ fyne.Theme = (*BoardTesterTheme)(nil)

var palette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNamePrimary:   colorutil.Shape,
	theme.ColorNameFocus:     colorutil.WithAlpha(colorutil.Selected, 0x7F),
	theme.ColorNameSelection: colorutil.WithAlpha(colorutil.Selected, 0x40),
	theme.ColorNameHover:     colorutil.ShapeFill,
	theme.ColorNameError:     colorutil.ErrorText,
	theme.ColorNameWarning:   colorutil.WarningText,
	theme.ColorNameSuccess:   colorutil.SuccessText,
	theme.ColorNameScrollBar: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
}

func (t *BoardTesterTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *BoardTesterTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BoardTesterTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size widens the scroll bars; large board images are panned a lot.
func (t *BoardTesterTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
