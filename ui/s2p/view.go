// Package s2p provides the S2P Viewer tab: a two-port Touchstone file shown
// as a dB table and plot.
package s2p

import (
	"fmt"
	"path/filepath"

	"board-tester/internal/touchstone"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
)

var headers = []string{"Freq (GHz)", "S11 (dB)", "S21 (dB)", "S12 (dB)", "S22 (dB)"}

// View shows one .s2p file at a time.
type View struct {
	window fyne.Window
	logger *log.Logger

	rows []touchstone.Row

	table   *widget.Table
	plot    *Plot
	status  *widget.Label
	content fyne.CanvasObject
}

// New creates the viewer. window parents its dialogs.
func New(window fyne.Window, logger *log.Logger) *View {
	if logger == nil {
		logger = log.Default()
	}
	v := &View{window: window, logger: logger.WithPrefix("s2p")}
	v.setupUI()
	return v
}

// Content returns the tab content.
func (v *View) Content() fyne.CanvasObject { return v.content }

func (v *View) setupUI() {
	v.status = widget.NewLabel("No file loaded")
	v.plot = NewPlot()

	v.table = widget.NewTable(
		func() (int, int) { return len(v.rows), len(headers) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(v.cell(id.Row, id.Col))
		},
	)
	v.table.ShowHeaderRow = true
	v.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	v.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		o.(*widget.Label).SetText(headers[id.Col])
	}
	for i := range headers {
		v.table.SetColumnWidth(i, 110)
	}

	split := container.NewVSplit(v.table, v.plot)
	split.Offset = 0.45
	v.content = container.NewBorder(
		container.NewHBox(widget.NewButton("Load .s2p File", v.browse)),
		v.status, nil, nil,
		split,
	)
}

func (v *View) cell(row, col int) string {
	if row >= len(v.rows) {
		return ""
	}
	r := v.rows[row]
	if col == 0 {
		return fmt.Sprintf("%.3f", r.GHz)
	}
	return fmt.Sprintf("%.2f", r.DB[col-1])
}

// Load reads path into the table and plot. On error both are cleared and
// the error is shown in the status line.
func (v *View) Load(path string) error {
	n, err := touchstone.Load(path)
	if err != nil {
		v.logger.Warn("load failed", "path", path, "err", err)
		v.rows = nil
		v.table.Refresh()
		v.plot.SetRows(nil)
		v.status.SetText("Error: " + err.Error())
		return err
	}
	v.rows = n.Rows()
	v.table.Refresh()
	v.plot.SetRows(v.rows)
	v.status.SetText(fmt.Sprintf("%s: %d points, %s format, Z0 %g Ohm", filepath.Base(path), len(v.rows), n.Format, n.Z0))
	return nil
}

func (v *View) browse() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		v.Load(reader.URI().Path())
	}, v.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".s2p"}))
	fd.Resize(fyne.NewSize(900, 600))
	fd.Show()
}
