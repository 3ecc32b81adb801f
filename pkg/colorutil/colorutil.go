// Package colorutil provides shared colors for the board tester UI.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Entry field backgrounds by validation verdict.
var (
	Alert   = MustHex("#FFCDD2") // not a number
	Warn    = MustHex("#FFECB3") // out of range
	Pass    = MustHex("#C8E6C9") // in range
	Neutral = White
)

// History table cell markers.
var (
	Baseline = MustHex("#E3F2FD")
	Differs  = MustHex("#FFF59D")
)

// Layout Mode shapes.
var (
	Shape     = MustHex("#00BCD4")
	Selected  = MustHex("#FF9800")
	Draft     = MustHex("#4CAF50")
	ShapeFill = color.RGBA{R: 0x00, G: 0xBC, B: 0xD4, A: 0x26}
)

// Status colors for text and icons; the verdict fills are too pale for them.
var (
	ErrorText   = MustHex("#C62828")
	WarningText = MustHex("#EF6C00")
	SuccessText = MustHex("#2E7D32")
)

// Traces colors the S11, S21, S12 and S22 curves of the S2P plot.
var Traces = [4]color.RGBA{
	MustHex("#1F77B4"),
	MustHex("#FF7F0E"),
	MustHex("#2CA02C"),
	MustHex("#D62728"),
}

// PlotGrid is the frame and grid line color of plots.
var PlotGrid = MustHex("#BDBDBD")

// Stroke widths for Layout Mode shapes.
const (
	ShapeStroke    = 2
	SelectedStroke = 3
)

// ParseHex parses "#RRGGBB" or "#RRGGBBAA".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("invalid hex color %q", s)
	}
	return c, err
}

// MustHex is ParseHex for package-level constants; it panics on bad input.
func MustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}
