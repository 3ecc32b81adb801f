// Package field defines measurement fields: a named rectangle on the board
// canvas bound to a typed input.
package field

import (
	"board-tester/pkg/geometry"
)

// Default geometry for fields whose document entry carries no rectangle.
const (
	DefaultWidth  = 100.0
	DefaultHeight = 24.0
)

// Field is a named, positioned, typed data-entry unit on the canvas.
type Field struct {
	ID            string
	Label         string
	ComponentType string
	Rect          geometry.Rect
	Input         Input
}

// New creates a field with the default numeric input.
// An empty label defaults to the id.
func New(id, label string, rect geometry.Rect) *Field {
	if label == "" {
		label = id
	}
	return &Field{
		ID:    id,
		Label: label,
		Rect:  rect,
		Input: NumberInput{},
	}
}

// DisplayLabel returns the label, or the id when no label is set.
func (f *Field) DisplayLabel() string {
	if f.Label == "" {
		return f.ID
	}
	return f.Label
}

// Kind returns the input kind, treating a missing input as a number.
func (f *Field) Kind() Kind {
	if f.Input == nil {
		return KindNumber
	}
	return f.Input.Kind()
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	if f.Input != nil {
		c.Input = f.Input.clone()
	}
	return &c
}

// Validate checks the field's own invariants. Identity uniqueness is the
// document's concern.
func (f *Field) Validate() error {
	if f.ID == "" {
		return ErrBlankID
	}
	if f.Rect.Width < 0 || f.Rect.Height < 0 {
		return ErrNegativeSize
	}
	if f.Input != nil {
		return f.Input.validate()
	}
	return nil
}
