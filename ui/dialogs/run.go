package dialogs

import (
	"errors"
	"path/filepath"
	"strings"

	"board-tester/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowRunMeta asks for the operator, lot and DUT id of an export, plus
// optional notes. done is called with ok false when the operator cancels.
func ShowRunMeta(window fyne.Window, run app.Run, last app.RunMeta, done func(meta app.RunMeta, ok bool)) {
	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(name + " is required")
			}
			return nil
		}
	}

	operator := entryWithText(last.Operator)
	operator.Validator = required("operator")
	lot := entryWithText(last.Lot)
	lot.Validator = required("lot")
	dut := widget.NewEntry()
	dut.Validator = required("DUT id")
	notes := widget.NewMultiLineEntry()
	notes.SetMinRowsVisible(3)

	dlg := dialog.NewForm("Export Run "+run.ID, "Continue", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Operator", operator),
		widget.NewFormItem("Lot", lot),
		widget.NewFormItem("DUT ID", dut),
		widget.NewFormItem("Notes", notes),
	}, func(ok bool) {
		done(app.RunMeta{
			Operator: strings.TrimSpace(operator.Text),
			Lot:      strings.TrimSpace(lot.Text),
			DUTID:    strings.TrimSpace(dut.Text),
			Notes:    strings.TrimSpace(notes.Text),
		}, ok)
	}, window)
	dlg.Resize(fyne.NewSize(420, 320))
	dlg.Show()
}

// ShowLayoutPicker lists the layouts in dir and calls onPick with the chosen
// path.
func ShowLayoutPicker(window fyne.Window, dir string, paths []string, onPick func(path string)) {
	if len(paths) == 0 {
		dialog.ShowInformation("Pick Layout", "No layouts in "+dir, window)
		return
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}

	var dlg dialog.Dialog
	list := widget.NewList(
		func() int { return len(names) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(names[id]) },
	)
	list.OnSelected = func(id widget.ListItemID) {
		dlg.Hide()
		onPick(paths[id])
	}

	dlg = dialog.NewCustom("Pick Layout", "Cancel", list, window)
	dlg.Resize(fyne.NewSize(360, 420))
	dlg.Show()
}
