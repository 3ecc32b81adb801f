// Package layout provides layout document handling and persistence.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"board-tester/internal/field"
	"board-tester/pkg/geometry"
)

// CurrentVersion is written to every saved document.
const CurrentVersion = 1

// Document is an ordered set of fields over a canvas background.
type Document struct {
	Version   int
	BoardName string
	Canvas    *CanvasConfig // nil when the file carries no canvas
	Fields    []*field.Field

	// Path is the file the document was loaded from or last saved to.
	Path string
}

type documentWire struct {
	Version   int            `json:"version"`
	BoardName string         `json:"board_name"`
	Canvas    *CanvasConfig  `json:"canvas,omitempty"`
	PDF       *CanvasConfig  `json:"pdf,omitempty"`
	Fields    []*field.Field `json:"fields"`
}

// New creates an empty document.
func New(boardName string) *Document {
	return &Document{Version: CurrentVersion, BoardName: boardName}
}

// Load loads a layout from a JSON file and checks that a pdf or image
// background exists.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("layout %s: %w", path, ErrNotFound)
		}
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	doc.Path = path

	if err := doc.CheckBackground(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes a layout document without touching the filesystem.
// A legacy top-level pdf block stands in for a missing canvas.
func Parse(data []byte) (*Document, error) {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &ParseError{Err: err}
	}

	doc := &Document{
		Version:   w.Version,
		BoardName: w.BoardName,
		Canvas:    w.Canvas,
	}
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Canvas == nil && w.PDF != nil {
		pdf := *w.PDF
		pdf.Type = CanvasPDF
		doc.Canvas = &pdf
	}

	seen := make(map[string]bool, len(w.Fields))
	for i, f := range w.Fields {
		if f == nil {
			return nil, &ParseError{Err: fmt.Errorf("field %d is null", i)}
		}
		if err := f.Validate(); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("field %d: %w", i, err)}
		}
		if seen[f.ID] {
			return nil, &ParseError{Err: fmt.Errorf("%w: %q", ErrDuplicateID, f.ID)}
		}
		seen[f.ID] = true
	}
	doc.Fields = w.Fields
	return doc, nil
}

// CheckBackground returns ErrNotFound when a pdf or image canvas has no path
// or its file does not exist.
func (d *Document) CheckBackground() error {
	c := d.EffectiveCanvas()
	if !c.NeedsFile() {
		return nil
	}
	p := c.ResolvePath(d.Path)
	if p == "" {
		return fmt.Errorf("%s background has no path: %w", c.Type, ErrNotFound)
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("%s background %s: %w", c.Type, p, ErrNotFound)
	}
	return nil
}

// EffectiveCanvas returns the canvas, or the blank default when none is set.
func (d *Document) EffectiveCanvas() CanvasConfig {
	if d.Canvas == nil {
		return BlankCanvas()
	}
	return *d.Canvas
}

// Marshal encodes the document in canonical form.
func (d *Document) Marshal() ([]byte, error) {
	canvas := d.EffectiveCanvas()
	fields := d.Fields
	if fields == nil {
		fields = []*field.Field{}
	}
	return json.MarshalIndent(documentWire{
		Version:   CurrentVersion,
		BoardName: d.BoardName,
		Canvas:    &canvas,
		Fields:    fields,
	}, "", "  ")
}

// Save writes the document to path and records path as its origin.
// A document without a canvas is written with the blank default. The
// document is left untouched when the write fails.
func (d *Document) Save(path string) error {
	canvas := d.EffectiveCanvas()

	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	d.Canvas = &canvas
	d.Version = CurrentVersion
	d.Path = path
	return nil
}

// Field returns the field with the given id.
func (d *Document) Field(id string) (*field.Field, bool) {
	i := d.index(id)
	if i < 0 {
		return nil, false
	}
	return d.Fields[i], true
}

// Has reports whether a field with the given id exists.
func (d *Document) Has(id string) bool {
	return d.index(id) >= 0
}

// FieldAt returns the topmost field containing p. Later fields are drawn
// over earlier ones, so the search runs in reverse creation order.
func (d *Document) FieldAt(p geometry.Point2D) (*field.Field, bool) {
	for i := len(d.Fields) - 1; i >= 0; i-- {
		if d.Fields[i].Rect.Contains(p) {
			return d.Fields[i], true
		}
	}
	return nil, false
}

// Add appends a field.
func (d *Document) Add(f *field.Field) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if d.Has(f.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateID, f.ID)
	}
	d.Fields = append(d.Fields, f)
	return nil
}

// Rename re-keys a field. Renaming to the same id is a no-op.
func (d *Document) Rename(oldID, newID string) error {
	f, ok := d.Field(oldID)
	if !ok {
		return fmt.Errorf("field %q: %w", oldID, ErrNotFound)
	}
	updated := f.Clone()
	updated.ID = newID
	return d.Replace(oldID, updated)
}

// Replace swaps the field stored under oldID for f, keeping its position in
// the order. f may carry a new id as long as it does not collide.
func (d *Document) Replace(oldID string, f *field.Field) error {
	i := d.index(oldID)
	if i < 0 {
		return fmt.Errorf("field %q: %w", oldID, ErrNotFound)
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID != oldID && d.Has(f.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateID, f.ID)
	}
	d.Fields[i] = f
	return nil
}

// Remove deletes a field. Removing an absent id is a no-op.
func (d *Document) Remove(id string) bool {
	i := d.index(id)
	if i < 0 {
		return false
	}
	d.Fields = slices.Delete(d.Fields, i, i+1)
	return true
}

// SetCanvas replaces the canvas configuration.
func (d *Document) SetCanvas(cfg CanvasConfig) {
	d.Canvas = &cfg
}

// IDs returns the field ids in document order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		ids[i] = f.ID
	}
	return ids
}

// Name returns the file name of the document, or "untitled".
func (d *Document) Name() string {
	if d.Path == "" {
		return "untitled"
	}
	return filepath.Base(d.Path)
}

func (d *Document) index(id string) int {
	return slices.IndexFunc(d.Fields, func(f *field.Field) bool { return f.ID == id })
}

// List returns the JSON layout files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
