package dialogs

import (
	"path/filepath"
	"strconv"
	"strings"

	"board-tester/internal/layout"
	"board-tester/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// CanvasDialog edits the background of a layout.
type CanvasDialog struct {
	cfg    layout.CanvasConfig
	window fyne.Window

	typeSelect *widget.Select
	pathEntry  *widget.Entry
	pageEntry  *widget.Entry
	dpiEntry   *widget.Entry
	sizeEntry  *widget.Entry
	gridCheck  *widget.Check
	gridEntry  *widget.Entry
	fileInfo   *widget.Label

	pdfForm   *widget.Form
	fileForm  *widget.Form
	blankForm *widget.Form

	onApply func(layout.CanvasConfig)
}

// NewCanvasDialog creates a canvas settings dialog for cfg.
func NewCanvasDialog(cfg layout.CanvasConfig, window fyne.Window, onApply func(layout.CanvasConfig)) *CanvasDialog {
	return &CanvasDialog{cfg: cfg, window: window, onApply: onApply}
}

// Show displays the dialog.
func (d *CanvasDialog) Show() {
	content := d.createContent()

	var dlg dialog.Dialog
	dlg = dialog.NewCustomConfirm("Canvas Settings", "Apply", "Cancel", content, func(apply bool) {
		if !apply {
			return
		}
		cfg, err := d.form().Config()
		if err != nil {
			dialog.ShowError(err, d.window)
			dlg.Show()
			return
		}
		if d.onApply != nil {
			d.onApply(cfg)
		}
	}, d.window)
	dlg.Resize(fyne.NewSize(460, 380))
	dlg.Show()
}

func (d *CanvasDialog) createContent() fyne.CanvasObject {
	cf := FormFromCanvas(d.cfg)

	types := make([]string, len(layout.CanvasTypes))
	for i, t := range layout.CanvasTypes {
		types[i] = string(t)
	}
	d.typeSelect = widget.NewSelect(types, nil)

	d.pathEntry = entryWithText(cf.Path)
	browse := widget.NewButton("Browse...", d.browse)
	d.fileInfo = widget.NewLabel("")
	d.dpiEntry = entryWithText(cf.DPI)
	d.fileForm = widget.NewForm(
		widget.NewFormItem("File", container.NewBorder(nil, nil, nil, browse, d.pathEntry)),
		widget.NewFormItem("", d.fileInfo),
		widget.NewFormItem("DPI", d.dpiEntry),
	)

	d.pageEntry = entryWithText(cf.Page)
	d.pdfForm = widget.NewForm(
		widget.NewFormItem("Page (from 0)", d.pageEntry),
	)

	d.sizeEntry = entryWithText(cf.Size)
	d.sizeEntry.SetPlaceHolder("1200x800")
	d.gridCheck = widget.NewCheck("Show grid", nil)
	d.gridCheck.SetChecked(cf.Grid)
	d.gridEntry = entryWithText(cf.GridSize)
	d.blankForm = widget.NewForm(
		widget.NewFormItem("Size (WxH)", d.sizeEntry),
		widget.NewFormItem("", d.gridCheck),
		widget.NewFormItem("Grid size", d.gridEntry),
	)

	d.typeSelect.OnChanged = d.showType
	d.typeSelect.SetSelected(cf.Type)

	return container.NewVBox(
		widget.NewForm(widget.NewFormItem("Type", d.typeSelect)),
		widget.NewSeparator(),
		d.fileForm,
		d.pdfForm,
		d.blankForm,
	)
}

func (d *CanvasDialog) showType(t string) {
	show := func(f *widget.Form, on bool) {
		if on {
			f.Show()
		} else {
			f.Hide()
		}
	}
	ct := layout.CanvasType(t)
	show(d.fileForm, ct == layout.CanvasPDF || ct == layout.CanvasImage)
	show(d.pdfForm, ct == layout.CanvasPDF)
	show(d.blankForm, ct == layout.CanvasBlank)
}

// browse picks the background file. The resolution embedded in TIFF images
// is shown next to it and prefills the DPI.
func (d *CanvasDialog) browse() {
	dlg := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		d.pathEntry.SetText(path)
		d.fileInfo.SetText("")
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			d.typeSelect.SetSelected(string(layout.CanvasPDF))
			return
		}
		d.typeSelect.SetSelected(string(layout.CanvasImage))
		if dpi, err := render.ImageDPI(path); err == nil && dpi > 0 {
			n := strconv.Itoa(int(dpi + 0.5))
			d.fileInfo.SetText("Embedded resolution: " + n + " dpi")
			d.dpiEntry.SetText(n)
		}
	}, d.window)

	exts := append([]string{".pdf"}, render.ImageFormats()...)
	dlg.SetFilter(storage.NewExtensionFileFilter(exts))
	if p := d.pathEntry.Text; p != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(p))); err == nil {
			dlg.SetLocation(lister)
		}
	}
	dlg.Resize(fyne.NewSize(900, 600))
	dlg.Show()
}

func (d *CanvasDialog) form() CanvasForm {
	return CanvasForm{
		Type:     d.typeSelect.Selected,
		Path:     d.pathEntry.Text,
		Page:     d.pageEntry.Text,
		DPI:      d.dpiEntry.Text,
		Size:     d.sizeEntry.Text,
		Grid:     d.gridCheck.Checked,
		GridSize: d.gridEntry.Text,
	}
}
