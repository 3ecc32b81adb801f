package dialogs

import (
	"fmt"
	"strings"

	"board-tester/internal/editor"
	"board-tester/internal/field"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Prompter implements editor.Prompter and editor.Notifier with fyne dialogs.
type Prompter struct {
	window fyne.Window
}

var (
	_ editor.Prompter = (*Prompter)(nil)
	_ editor.Notifier = (*Prompter)(nil)
)

// NewPrompter creates dialogs parented to window.
func NewPrompter(window fyne.Window) *Prompter {
	return &Prompter{window: window}
}

// Error shows err in an error dialog.
func (p *Prompter) Error(title string, err error) {
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), p.window)
}

// PromptNewField asks for the id and label of a new field.
func (p *Prompter) PromptNewField(suggestedID string, done func(id, label string, ok bool)) {
	idEntry := widget.NewEntry()
	idEntry.SetPlaceHolder("e.g. R12")
	idEntry.SetText(suggestedID)
	idEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return field.ErrBlankID
		}
		return nil
	}
	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("defaults to the id")

	dlg := dialog.NewForm("New Field", "Add", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Field ID", idEntry),
		widget.NewFormItem("Label", labelEntry),
	}, func(ok bool) {
		done(idEntry.Text, labelEntry.Text, ok)
	}, p.window)
	dlg.Resize(fyne.NewSize(360, 180))
	dlg.Show()
	p.window.Canvas().Focus(idEntry)
}

// EditField shows the field properties dialog.
func (p *Prompter) EditField(f *field.Field, done func(edited *field.Field, ok bool)) {
	d := newFieldDialog(f)
	content := d.createContent()

	var dlg dialog.Dialog
	dlg = dialog.NewCustomConfirm("Field: "+f.ID, "Save", "Cancel", content, func(save bool) {
		if !save {
			done(nil, false)
			return
		}
		edited, err := d.form().Apply(f)
		if err != nil {
			dialog.ShowError(err, p.window)
			dlg.Show()
			return
		}
		done(edited, true)
	}, p.window)
	dlg.Resize(fyne.NewSize(480, 460))
	dlg.Show()
}

// fieldDialog holds the widgets of the properties sheet.
type fieldDialog struct {
	initial FieldForm
	rect    string

	idEntry        *widget.Entry
	labelEntry     *widget.Entry
	componentEntry *widget.Entry
	kindSelect     *widget.Select

	unitsEntry      *widget.Entry
	defaultUnit     *widget.Entry
	validationEntry *widget.Entry
	optionsEntry    *widget.Entry
	defaultOption   *widget.Entry
	toggleEntry     *widget.Entry

	numberForm *widget.Form
	enumForm   *widget.Form
	toggleForm *widget.Form
}

func newFieldDialog(f *field.Field) *fieldDialog {
	r := f.Rect
	return &fieldDialog{
		initial: FormFromField(f),
		rect:    fmt.Sprintf("x %.0f  y %.0f  w %.0f  h %.0f", r.X, r.Y, r.Width, r.Height),
	}
}

func (d *fieldDialog) createContent() fyne.CanvasObject {
	ff := d.initial

	d.idEntry = entryWithText(ff.ID)
	d.labelEntry = entryWithText(ff.Label)
	d.componentEntry = entryWithText(ff.ComponentType)
	d.componentEntry.SetPlaceHolder("e.g. resistor")

	kinds := make([]string, len(field.Kinds))
	for i, k := range field.Kinds {
		kinds[i] = string(k)
	}
	d.kindSelect = widget.NewSelect(kinds, nil)

	d.unitsEntry = entryWithText(ff.Units)
	d.unitsEntry.SetPlaceHolder("V, mV")
	d.defaultUnit = entryWithText(ff.DefaultUnit)
	d.validationEntry = entryWithText(ff.Validation)
	d.validationEntry.SetPlaceHolder("target,lower_pct,upper_pct,lower_abs,upper_abs")
	d.numberForm = widget.NewForm(
		widget.NewFormItem("Units", d.unitsEntry),
		widget.NewFormItem("Default unit", d.defaultUnit),
		widget.NewFormItem("Validation", d.validationEntry),
	)

	d.optionsEntry = entryWithText(ff.Options)
	d.optionsEntry.SetPlaceHolder("pass, fail")
	d.defaultOption = entryWithText(ff.Default)
	d.enumForm = widget.NewForm(
		widget.NewFormItem("Options", d.optionsEntry),
		widget.NewFormItem("Default", d.defaultOption),
	)

	d.toggleEntry = entryWithText(ff.Toggle)
	d.toggleEntry.SetPlaceHolder("True|False")
	d.toggleForm = widget.NewForm(widget.NewFormItem("Labels", d.toggleEntry))

	d.kindSelect.OnChanged = d.showKind
	d.kindSelect.SetSelected(ff.Kind)

	general := widget.NewForm(
		widget.NewFormItem("Field ID", d.idEntry),
		widget.NewFormItem("Label", d.labelEntry),
		widget.NewFormItem("Component", d.componentEntry),
		widget.NewFormItem("Rectangle", widget.NewLabel(d.rect)),
		widget.NewFormItem("Input type", d.kindSelect),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		general,
		widget.NewSeparator(),
		d.numberForm,
		d.enumForm,
		d.toggleForm,
	))
}

// showKind shows only the parameter section of the selected input type.
func (d *fieldDialog) showKind(kind string) {
	show := func(f *widget.Form, on bool) {
		if on {
			f.Show()
		} else {
			f.Hide()
		}
	}
	show(d.numberForm, kind == string(field.KindNumber))
	show(d.enumForm, kind == string(field.KindEnum))
	show(d.toggleForm, kind == string(field.KindToggle))
}

func (d *fieldDialog) form() FieldForm {
	return FieldForm{
		ID:            d.idEntry.Text,
		Label:         d.labelEntry.Text,
		ComponentType: d.componentEntry.Text,
		Kind:          d.kindSelect.Selected,
		Units:         d.unitsEntry.Text,
		DefaultUnit:   d.defaultUnit.Text,
		Validation:    d.validationEntry.Text,
		Options:       d.optionsEntry.Text,
		Default:       d.defaultOption.Text,
		Toggle:        d.toggleEntry.Text,
	}
}

func entryWithText(s string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(s)
	return e
}
