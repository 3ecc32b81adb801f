package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CanvasType selects the background source.
type CanvasType string

const (
	CanvasPDF   CanvasType = "pdf"
	CanvasImage CanvasType = "image"
	CanvasBlank CanvasType = "blank"
)

// CanvasTypes lists the background sources in the order offered to operators.
var CanvasTypes = []CanvasType{CanvasPDF, CanvasImage, CanvasBlank}

// Canvas defaults.
const (
	DefaultDPI         = 144
	DefaultBlankWidth  = 1200
	DefaultBlankHeight = 800
	DefaultGridSize    = 16
	SavedGridSize      = 20
)

// Grid configures the blank canvas grid lines.
type Grid struct {
	Enabled bool `json:"enabled"`
	Size    int  `json:"size"`
}

// CanvasConfig describes the background of a layout. Only the parameters
// relevant to Type are written.
type CanvasConfig struct {
	Type   CanvasType
	Path   string
	Page   int
	DPI    int
	Width  int
	Height int
	Grid   Grid
}

// BlankCanvas returns the blank canvas used when a document has none.
func BlankCanvas() CanvasConfig {
	return CanvasConfig{
		Type:   CanvasBlank,
		Width:  DefaultBlankWidth,
		Height: DefaultBlankHeight,
		Grid:   Grid{Enabled: true, Size: SavedGridSize},
	}
}

// NeedsFile reports whether the canvas is backed by a file on disk.
func (c CanvasConfig) NeedsFile() bool {
	return c.Type == CanvasPDF || c.Type == CanvasImage
}

// EffectiveDPI returns the DPI, or the default when unset.
func (c CanvasConfig) EffectiveDPI() int {
	if c.DPI <= 0 {
		return DefaultDPI
	}
	return c.DPI
}

// Size returns the blank canvas size with defaults applied.
func (c CanvasConfig) Size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 || h <= 0 {
		return DefaultBlankWidth, DefaultBlankHeight
	}
	return w, h
}

// GridSize returns the grid spacing with the default applied.
func (c CanvasConfig) GridSize() int {
	if c.Grid.Size <= 0 {
		return DefaultGridSize
	}
	return c.Grid.Size
}

// ResolvePath returns the background file path. Relative paths are tried
// against the working directory first, then against the layout file's
// directory.
func (c CanvasConfig) ResolvePath(docPath string) string {
	if c.Path == "" || filepath.IsAbs(c.Path) || docPath == "" {
		return c.Path
	}
	if _, err := os.Stat(c.Path); err == nil {
		return c.Path
	}
	return filepath.Join(filepath.Dir(docPath), c.Path)
}

// ParseSize parses "W,H" or "WxH". Unparseable input yields the default
// blank size and false.
func ParseSize(s string) (int, int, bool) {
	s = strings.ReplaceAll(strings.ToLower(s), "x", ",")
	var w, h int
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%d,%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return DefaultBlankWidth, DefaultBlankHeight, false
	}
	return w, h, true
}

type canvasWire struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	Page *int   `json:"page,omitempty"`
	DPI  *int   `json:"dpi,omitempty"`
	Size []int  `json:"size,omitempty"`
	Grid *struct {
		Enabled *bool `json:"enabled"`
		Size    int   `json:"size"`
	} `json:"grid,omitempty"`
}

// UnmarshalJSON reads a canvas block. A missing type means pdf.
func (c *CanvasConfig) UnmarshalJSON(data []byte) error {
	var w canvasWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t := CanvasType(strings.ToLower(strings.TrimSpace(w.Type)))
	switch t {
	case "":
		t = CanvasPDF
	case CanvasPDF, CanvasImage, CanvasBlank:
	default:
		return fmt.Errorf("unknown canvas type %q", w.Type)
	}

	*c = CanvasConfig{Type: t, Path: w.Path}
	if w.Page != nil {
		c.Page = *w.Page
	}
	if w.DPI != nil {
		c.DPI = *w.DPI
	}
	if len(w.Size) >= 2 {
		c.Width, c.Height = w.Size[0], w.Size[1]
	}
	c.Grid = Grid{Enabled: true, Size: DefaultGridSize}
	if w.Grid != nil {
		if w.Grid.Enabled != nil {
			c.Grid.Enabled = *w.Grid.Enabled
		}
		if w.Grid.Size > 0 {
			c.Grid.Size = w.Grid.Size
		}
	}
	return nil
}

// MarshalJSON writes only the keys relevant to the canvas type.
func (c CanvasConfig) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": c.Type}
	switch c.Type {
	case CanvasPDF:
		out["path"] = c.Path
		out["page"] = c.Page
		out["dpi"] = c.EffectiveDPI()
	case CanvasImage:
		out["path"] = c.Path
		out["dpi"] = c.EffectiveDPI()
	case CanvasBlank:
		w, h := c.Size()
		out["size"] = []int{w, h}
		out["grid"] = Grid{Enabled: c.Grid.Enabled, Size: c.GridSize()}
	}
	return json.Marshal(out)
}
