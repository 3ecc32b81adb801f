package editor

import (
	"image"

	"board-tester/internal/field"
	"board-tester/internal/validation"
	"board-tester/pkg/geometry"
)

// Surface renders the editor's visuals. Implementations must not call back
// into the editor synchronously from these methods.
type Surface interface {
	// Clear removes every visual, background included.
	Clear()
	SetBackground(img image.Image)
	// AddShape draws a Layout Mode rectangle with its label.
	AddShape(f *field.Field, selected bool) Handle
	// AddInput mounts an Entry Mode widget bound to v.
	AddInput(f *field.Field, v *Value) Handle
	ShowDraft(r geometry.Rect)
	HideDraft()
}

// Handle is the visual created for one field.
type Handle interface {
	Update(f *field.Field, selected bool)
	SetVerdict(v validation.Verdict)
	Remove()
}

// Prompter collects operator input. Both calls may complete asynchronously.
type Prompter interface {
	// PromptNewField asks for the id and label of a freshly drawn field.
	PromptNewField(suggestedID string, done func(id, label string, ok bool))
	// EditField shows the field properties. The rectangle is read-only.
	EditField(f *field.Field, done func(edited *field.Field, ok bool))
}

// Notifier reports failures to the operator.
type Notifier interface {
	Error(title string, err error)
}

// Suggester proposes a field id from the background under a rectangle.
type Suggester interface {
	SuggestID(img image.Image, r geometry.Rect) (string, error)
}

type nopSurface struct{}

func (nopSurface) Clear()                               {}
func (nopSurface) SetBackground(image.Image)            {}
func (nopSurface) AddShape(*field.Field, bool) Handle   { return nopHandle{} }
func (nopSurface) AddInput(*field.Field, *Value) Handle { return nopHandle{} }
func (nopSurface) ShowDraft(geometry.Rect)              {}
func (nopSurface) HideDraft()                           {}

type nopHandle struct{}

func (nopHandle) Update(*field.Field, bool)     {}
func (nopHandle) SetVerdict(validation.Verdict) {}
func (nopHandle) Remove()                       {}
