// Package compare provides the run comparison window.
package compare

import (
	"context"
	"fmt"
	"image/color"
	"strconv"

	"board-tester/internal/history"
	"board-tester/internal/store"
	"board-tester/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
)

// fixedCols are the Field ID and Label columns before the run columns.
const fixedCols = 2

var statHeaders = []string{"n", "mean", "sd", "min", "max"}

// Window lists logged runs and pivots the checked ones against the first
// checked run.
type Window struct {
	fyne.Window

	ctx    context.Context
	engine *history.Engine
	logger *log.Logger

	runs     []store.Run
	byOption map[string]string

	runChecks *widget.CheckGroup
	onlyDiff  *widget.Check
	stats     *widget.Check
	table     *widget.Table
	status    *widget.Label

	pivot *history.Table
}

// Show opens the comparison window.
func Show(ctx context.Context, a fyne.App, engine *history.Engine, logger *log.Logger) *Window {
	if logger == nil {
		logger = log.Default()
	}
	w := &Window{
		Window: a.NewWindow("Run History"),
		ctx:    ctx,
		engine: engine,
		logger: logger.WithPrefix("history"),
		pivot:  &history.Table{},
	}
	w.setupUI()
	w.Resize(fyne.NewSize(1000, 600))
	w.Show()
	w.loadRuns()
	return w
}

func (w *Window) setupUI() {
	w.runChecks = widget.NewCheckGroup(nil, func([]string) { w.refresh() })
	w.onlyDiff = widget.NewCheck("Only differences", func(bool) { w.refresh() })
	w.stats = widget.NewCheck("Statistics", func(bool) { w.table.Refresh() })
	w.status = widget.NewLabel("")

	w.table = widget.NewTable(w.size, w.createCell, w.updateCell)
	w.table.ShowHeaderRow = true
	w.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	w.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		o.(*widget.Label).SetText(w.header(id.Col))
	}
	w.table.SetColumnWidth(0, 110)
	w.table.SetColumnWidth(1, 160)

	reload := widget.NewButton("Reload", w.loadRuns)
	left := container.NewBorder(
		widget.NewLabelWithStyle("Runs (first checked is baseline)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewVBox(w.onlyDiff, w.stats, reload),
		nil, nil,
		container.NewVScroll(w.runChecks),
	)

	split := container.NewHSplit(left, w.table)
	split.Offset = 0.3
	w.SetContent(container.NewBorder(nil, w.status, nil, nil, split))
}

func (w *Window) loadRuns() {
	runs, err := w.engine.ListRuns(w.ctx)
	if err != nil {
		dialog.ShowError(err, w.Window)
		return
	}
	w.runs = runs
	w.byOption = make(map[string]string, len(runs))
	options := make([]string, len(runs))
	for i, r := range runs {
		options[i] = runOption(r)
		w.byOption[options[i]] = r.RunID
	}
	w.runChecks.Options = options
	w.runChecks.Selected = nil
	w.runChecks.Refresh()
	w.refresh()
}

func runOption(r store.Run) string {
	s := r.RunID
	if r.Operator != "" || r.DUTID != "" {
		s += fmt.Sprintf("  (%s, DUT %s)", r.Operator, r.DUTID)
	}
	return s
}

// selected returns the checked run ids in the order they were checked.
func (w *Window) selected() []string {
	ids := make([]string, 0, len(w.runChecks.Selected))
	for _, opt := range w.runChecks.Selected {
		if id, ok := w.byOption[opt]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (w *Window) refresh() {
	ids := w.selected()
	if len(ids) == 0 {
		w.pivot = &history.Table{}
		w.status.SetText(fmt.Sprintf("%d runs logged. Check runs to compare.", len(w.runs)))
		w.table.Refresh()
		return
	}
	tbl, err := w.engine.Pivot(w.ctx, ids, w.onlyDiff.Checked)
	if err != nil {
		w.logger.Error("pivot failed", "err", err)
		dialog.ShowError(err, w.Window)
		return
	}
	w.pivot = tbl
	for i := range tbl.RunIDs {
		w.table.SetColumnWidth(fixedCols+i, 120)
	}
	w.status.SetText(fmt.Sprintf("%d fields, baseline %s", len(tbl.Rows), tbl.Baseline()))
	w.table.Refresh()
}

func (w *Window) size() (int, int) {
	cols := fixedCols + len(w.pivot.RunIDs)
	if w.stats != nil && w.stats.Checked {
		cols += len(statHeaders)
	}
	return len(w.pivot.Rows), cols
}

func (w *Window) header(col int) string {
	switch {
	case col == 0:
		return "Field ID"
	case col == 1:
		return "Label"
	case col < fixedCols+len(w.pivot.RunIDs):
		return w.pivot.RunIDs[col-fixedCols]
	default:
		i := col - fixedCols - len(w.pivot.RunIDs)
		if i < len(statHeaders) {
			return statHeaders[i]
		}
		return ""
	}
}

func (w *Window) createCell() fyne.CanvasObject {
	bg := fynecanvas.NewRectangle(color.Transparent)
	return container.NewStack(bg, widget.NewLabel(""))
}

func (w *Window) updateCell(id widget.TableCellID, o fyne.CanvasObject) {
	stack := o.(*fyne.Container)
	bg := stack.Objects[0].(*fynecanvas.Rectangle)
	label := stack.Objects[1].(*widget.Label)

	bg.FillColor = color.Transparent
	if id.Row >= len(w.pivot.Rows) {
		label.SetText("")
		bg.Refresh()
		return
	}
	row := w.pivot.Rows[id.Row]
	runCol := id.Col - fixedCols

	switch {
	case id.Col == 0:
		label.SetText(row.FieldID)
	case id.Col == 1:
		label.SetText(row.Label)
	case runCol < len(w.pivot.RunIDs):
		run := w.pivot.RunIDs[runCol]
		label.SetText(row.Cells[run])
		switch w.pivot.Marker(row, run) {
		case history.MarkBaseline:
			bg.FillColor = colorutil.Baseline
		case history.MarkDiffers:
			bg.FillColor = colorutil.Differs
		}
	default:
		label.SetText(statCell(row.Summary, runCol-len(w.pivot.RunIDs)))
	}
	bg.Refresh()
}

func statCell(s history.Summary, i int) string {
	if s.N == 0 {
		return ""
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	switch i {
	case 0:
		return strconv.Itoa(s.N)
	case 1:
		return f(s.Mean)
	case 2:
		return f(s.StdDev)
	case 3:
		return f(s.Min)
	case 4:
		return f(s.Max)
	}
	return ""
}
