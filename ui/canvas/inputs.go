package canvas

import (
	"board-tester/internal/editor"
	"board-tester/internal/field"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// newInputWidget builds the Entry Mode widget for f, initialized from v and
// writing every change back to it.
func newInputWidget(f *field.Field, v *editor.Value) fyne.CanvasObject {
	switch in := f.Input.(type) {
	case field.ToggleInput:
		trueLabel, _ := in.Labels()
		check := widget.NewCheck(trueLabel, nil)
		check.SetChecked(v.Bool())
		check.OnChanged = v.SetBool
		return check

	case field.EnumInput:
		sel := widget.NewSelect(in.Options, nil)
		if v.Text() != "" {
			sel.SetSelected(v.Text())
		}
		sel.OnChanged = v.SetText
		return sel

	case field.TextInput:
		return newEntry(f, v)

	case field.NumberInput:
		entry := newEntry(f, v)
		if !in.HasUnitChooser() {
			return entry
		}
		units := widget.NewSelect(in.Units, nil)
		units.SetSelected(v.Unit())
		units.OnChanged = v.SetUnit
		return container.NewBorder(nil, nil, nil, units, entry)

	default:
		return newEntry(f, v)
	}
}

func newEntry(f *field.Field, v *editor.Value) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(f.DisplayLabel())
	e.SetText(v.Text())
	e.OnChanged = v.SetText
	return e
}
