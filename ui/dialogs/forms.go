// Package dialogs provides the application dialogs. Text forms are parsed
// by the plain types in this file so they can be checked without a window.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"board-tester/internal/field"
	"board-tester/internal/layout"
)

// toggleSep separates the true and false labels of a toggle field.
const toggleSep = "|"

// FieldForm is the text representation of a field in the properties dialog.
type FieldForm struct {
	ID            string
	Label         string
	ComponentType string
	Kind          string

	// Number
	Units       string
	DefaultUnit string
	Validation  string

	// Enum
	Options string
	Default string

	// Toggle, as "true|false".
	Toggle string
}

// FormFromField fills a form from f.
func FormFromField(f *field.Field) FieldForm {
	ff := FieldForm{
		ID:            f.ID,
		Label:         f.Label,
		ComponentType: f.ComponentType,
		Kind:          string(f.Kind()),
	}
	switch in := f.Input.(type) {
	case field.NumberInput:
		ff.Units = strings.Join(in.Units, ",")
		ff.DefaultUnit = in.DefaultUnit
		if in.Validation != nil {
			ff.Validation = in.Validation.String()
		}
	case field.EnumInput:
		ff.Options = strings.Join(in.Options, ",")
		ff.Default = in.Default
	case field.ToggleInput:
		on, off := in.Labels()
		ff.Toggle = on + toggleSep + off
	}
	return ff
}

// Apply builds the edited field. The rectangle is taken from orig. Only the
// parameters of the chosen kind are kept, so switching a number field to
// another kind drops its units and validation.
func (ff FieldForm) Apply(orig *field.Field) (*field.Field, error) {
	kind, err := field.ParseKind(ff.Kind)
	if err != nil {
		return nil, err
	}

	f := orig.Clone()
	f.ID = strings.TrimSpace(ff.ID)
	f.Label = strings.TrimSpace(ff.Label)
	f.ComponentType = strings.TrimSpace(ff.ComponentType)

	switch kind {
	case field.KindNumber:
		in := field.NumberInput{
			Units:       field.SplitList(ff.Units),
			DefaultUnit: strings.TrimSpace(ff.DefaultUnit),
		}
		tol, err := field.ParseTolerance(ff.Validation)
		if err != nil {
			return nil, fmt.Errorf("validation: %w", err)
		}
		if !tol.IsEmpty() {
			in.Validation = tol
		}
		f.Input = in
	case field.KindEnum:
		f.Input = field.EnumInput{
			Options: field.SplitList(ff.Options),
			Default: strings.TrimSpace(ff.Default),
		}
	case field.KindToggle:
		in := field.ToggleInput{}
		if s := strings.TrimSpace(ff.Toggle); s != "" {
			on, off, _ := strings.Cut(s, toggleSep)
			in.TrueLabel, in.FalseLabel = strings.TrimSpace(on), strings.TrimSpace(off)
		}
		in.TrueLabel, in.FalseLabel = in.Labels()
		f.Input = in
	default:
		f.Input = field.TextInput{}
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// CanvasForm is the text representation of a canvas in the settings dialog.
type CanvasForm struct {
	Type     string
	Path     string
	Page     string
	DPI      string
	Size     string
	Grid     bool
	GridSize string
}

// FormFromCanvas fills a form from c.
func FormFromCanvas(c layout.CanvasConfig) CanvasForm {
	w, h := c.Size()
	cf := CanvasForm{
		Type:     string(c.Type),
		Path:     c.Path,
		Page:     strconv.Itoa(c.Page),
		DPI:      strconv.Itoa(c.EffectiveDPI()),
		Size:     fmt.Sprintf("%dx%d", w, h),
		Grid:     c.Grid.Enabled,
		GridSize: strconv.Itoa(c.GridSize()),
	}
	if cf.Type == "" {
		cf.Type = string(layout.CanvasBlank)
	}
	return cf
}

// Config parses the form. An unparseable blank size falls back to the
// default size.
func (cf CanvasForm) Config() (layout.CanvasConfig, error) {
	c := layout.CanvasConfig{Type: layout.CanvasType(strings.ToLower(strings.TrimSpace(cf.Type)))}
	switch c.Type {
	case layout.CanvasPDF:
		page, err := atoiOr(cf.Page, 0)
		if err != nil || page < 0 {
			return c, fmt.Errorf("page %q: must be a page index from 0", cf.Page)
		}
		dpi, err := cf.dpi()
		if err != nil {
			return c, err
		}
		c.Path, c.Page, c.DPI = strings.TrimSpace(cf.Path), page, dpi
	case layout.CanvasImage:
		dpi, err := cf.dpi()
		if err != nil {
			return c, err
		}
		c.Path, c.DPI = strings.TrimSpace(cf.Path), dpi
	case layout.CanvasBlank:
		c.Width, c.Height, _ = layout.ParseSize(cf.Size)
		size, err := atoiOr(cf.GridSize, layout.SavedGridSize)
		if err != nil || size <= 0 {
			return c, fmt.Errorf("grid size %q: must be a positive number", cf.GridSize)
		}
		c.Grid = layout.Grid{Enabled: cf.Grid, Size: size}
	default:
		return c, fmt.Errorf("unknown canvas type %q", cf.Type)
	}
	if c.NeedsFile() && c.Path == "" {
		return c, fmt.Errorf("%s canvas needs a file", c.Type)
	}
	return c, nil
}

func (cf CanvasForm) dpi() (int, error) {
	dpi, err := atoiOr(cf.DPI, layout.DefaultDPI)
	if err != nil || dpi <= 0 {
		return 0, fmt.Errorf("dpi %q: must be a positive number", cf.DPI)
	}
	return dpi, nil
}

func atoiOr(s string, fallback int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
