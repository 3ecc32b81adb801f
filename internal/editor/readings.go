package editor

import (
	"strings"

	"board-tester/internal/field"
)

// Reading is the exported value of one field.
type Reading struct {
	FieldID       string
	Label         string
	ComponentType string
	Value         string
	Unit          string
}

// Readings returns the current Entry Mode value of every field in document
// order. Fields that were never mounted report their initial value.
func (e *Editor) Readings() []Reading {
	out := make([]Reading, 0, len(e.doc.Fields))
	for _, f := range e.doc.Fields {
		v, ok := e.values[f.ID]
		if !ok || v.Kind() != f.Kind() {
			v = NewValue(f)
		}
		out = append(out, ReadingOf(f, v))
	}
	return out
}

// ReadingOf formats v according to the input of f.
func ReadingOf(f *field.Field, v *Value) Reading {
	r := Reading{
		FieldID:       f.ID,
		Label:         f.DisplayLabel(),
		ComponentType: f.ComponentType,
	}
	switch in := f.Input.(type) {
	case field.ToggleInput:
		r.Value = in.Format(v.Bool())
	case field.EnumInput, field.TextInput:
		r.Value = strings.TrimSpace(v.Text())
	case field.NumberInput:
		r.Value = strings.TrimSpace(v.Text())
		if in.HasUnitChooser() {
			r.Unit = strings.TrimSpace(v.Unit())
		} else {
			r.Unit = in.DefaultUnit
		}
	default:
		r.Value = strings.TrimSpace(v.Text())
	}
	return r
}
