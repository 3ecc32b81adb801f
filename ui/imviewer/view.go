// Package imviewer provides the IM Viewer tab: the bias commands of an .im
// measurement file as a table.
package imviewer

import (
	"fmt"
	"path/filepath"

	"board-tester/internal/imfile"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
)

// View shows the biasingcmd entries of one file.
type View struct {
	window fyne.Window
	logger *log.Logger

	cmds []imfile.BiasCommand

	table   *widget.Table
	status  *widget.Label
	content fyne.CanvasObject
}

// New creates the viewer. window parents its dialogs.
func New(window fyne.Window, logger *log.Logger) *View {
	if logger == nil {
		logger = log.Default()
	}
	v := &View{window: window, logger: logger.WithPrefix("im")}

	v.status = widget.NewLabel("No file loaded")
	v.table = widget.NewTable(
		func() (int, int) { return len(v.cmds), len(imfile.Columns) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			text := ""
			if id.Row < len(v.cmds) {
				text = v.cmds[id.Row].Cells()[id.Col]
			}
			o.(*widget.Label).SetText(text)
		},
	)
	v.table.ShowHeaderRow = true
	v.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	v.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		o.(*widget.Label).SetText(imfile.Columns[id.Col])
	}
	for i := range imfile.Columns {
		v.table.SetColumnWidth(i, 140)
	}

	v.content = container.NewBorder(
		container.NewHBox(widget.NewButton("Load .im File", v.browse)),
		v.status, nil, nil,
		v.table,
	)
	return v
}

// Content returns the tab content.
func (v *View) Content() fyne.CanvasObject { return v.content }

// Load reads path into the table. On error the table is cleared and the
// error is shown in the status line.
func (v *View) Load(path string) error {
	cmds, err := imfile.Load(path)
	if err != nil {
		v.logger.Warn("load failed", "path", path, "err", err)
		v.cmds = nil
		v.status.SetText("Error: " + err.Error())
		v.table.Refresh()
		return err
	}
	v.cmds = cmds
	v.status.SetText(fmt.Sprintf("%s: %d bias commands", filepath.Base(path), len(cmds)))
	v.table.Refresh()
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
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".im"}))
	fd.Resize(fyne.NewSize(900, 600))
	fd.Show()
}
