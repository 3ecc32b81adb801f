package s2p

import (
	"fmt"
	"math"

	"board-tester/internal/touchstone"
	"board-tester/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"gonum.org/v1/gonum/floats"
)

const gridDivisions = 5

// Plot draws the four S-parameter traces in dB against frequency in GHz.
type Plot struct {
	widget.BaseWidget
	rows []touchstone.Row
}

// NewPlot creates an empty plot.
func NewPlot() *Plot {
	p := &Plot{}
	p.ExtendBaseWidget(p)
	return p
}

// SetRows replaces the plotted data. nil clears the plot.
func (p *Plot) SetRows(rows []touchstone.Row) {
	p.rows = rows
	p.Refresh()
}

func (p *Plot) CreateRenderer() fyne.WidgetRenderer {
	r := &plotRenderer{plot: p}
	r.frame = canvas.NewRectangle(theme.Color(theme.ColorNameBackground))
	r.frame.StrokeColor = colorutil.PlotGrid
	r.frame.StrokeWidth = 1
	r.title = canvas.NewText("S-Parameters", theme.Color(theme.ColorNameForeground))
	r.title.TextStyle.Bold = true
	r.xLabel = canvas.NewText("Frequency (GHz)", theme.Color(theme.ColorNameForeground))
	r.yLabel = canvas.NewText("Magnitude (dB)", theme.Color(theme.ColorNameForeground))
	for i := range r.legend {
		r.legend[i] = canvas.NewText(touchstone.Params[i], colorutil.Traces[i])
	}
	for i := range r.ticks {
		r.ticks[i] = canvas.NewText("", theme.Color(theme.ColorNameForeground))
		r.ticks[i].TextSize = theme.CaptionTextSize()
	}
	for i := range r.grid {
		r.grid[i] = canvas.NewLine(colorutil.PlotGrid)
		r.grid[i].StrokeWidth = 0.5
	}
	r.rebuild()
	return r
}

// axisRange returns the data bounds over finite values. Flat or empty data
// gets a unit span so the mapping stays defined.
func axisRange(rows []touchstone.Row) (xlo, xhi, ylo, yhi float64) {
	var xs, ys []float64
	for _, r := range rows {
		xs = append(xs, r.GHz)
		for _, v := range r.DB {
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				ys = append(ys, v)
			}
		}
	}
	xlo, xhi, ylo, yhi = 0, 1, -1, 0
	if len(xs) > 0 {
		xlo, xhi = floats.Min(xs), floats.Max(xs)
	}
	if len(ys) > 0 {
		ylo, yhi = floats.Min(ys), floats.Max(ys)
	}
	if xhi == xlo {
		xlo, xhi = xlo-0.5, xhi+0.5
	}
	if yhi == ylo {
		ylo, yhi = ylo-1, yhi+1
	}
	return xlo, xhi, ylo, yhi
}

type plotRenderer struct {
	plot *Plot

	frame          *canvas.Rectangle
	title          *canvas.Text
	xLabel, yLabel *canvas.Text
	legend         [4]*canvas.Text
	ticks          [4]*canvas.Text // x low, x high, y low, y high
	grid           [2 * (gridDivisions - 1)]*canvas.Line
	traces         [4][]*canvas.Line

	rows []touchstone.Row
}

// rebuild recreates the trace segments for the current rows.
func (r *plotRenderer) rebuild() {
	r.rows = r.plot.rows
	n := len(r.rows) - 1
	if n < 0 {
		n = 0
	}
	for k := range r.traces {
		r.traces[k] = make([]*canvas.Line, n)
		for i := range r.traces[k] {
			l := canvas.NewLine(colorutil.Traces[k])
			l.StrokeWidth = 1.5
			r.traces[k][i] = l
		}
	}
	xlo, xhi, ylo, yhi := axisRange(r.rows)
	r.ticks[0].Text = fmt.Sprintf("%.3f", xlo)
	r.ticks[1].Text = fmt.Sprintf("%.3f", xhi)
	r.ticks[2].Text = fmt.Sprintf("%.1f", ylo)
	r.ticks[3].Text = fmt.Sprintf("%.1f", yhi)
}

func (r *plotRenderer) Layout(size fyne.Size) {
	const (
		left   = 64
		right  = 56
		top    = 28
		bottom = 44
	)
	area := fyne.NewSize(size.Width-left-right, size.Height-top-bottom)
	if area.Width < 1 || area.Height < 1 {
		return
	}
	origin := fyne.NewPos(left, top)

	r.frame.Move(origin)
	r.frame.Resize(area)

	r.title.Move(fyne.NewPos(origin.X+(area.Width-r.title.MinSize().Width)/2, 4))
	r.xLabel.Move(fyne.NewPos(origin.X+(area.Width-r.xLabel.MinSize().Width)/2, size.Height-r.xLabel.MinSize().Height-2))
	r.yLabel.Move(fyne.NewPos(2, 4))

	for i, l := range r.legend {
		l.Move(fyne.NewPos(origin.X+area.Width+8, origin.Y+float32(i)*(l.MinSize().Height+2)))
	}

	tickH := r.ticks[0].MinSize().Height
	r.ticks[0].Move(fyne.NewPos(origin.X, origin.Y+area.Height+2))
	r.ticks[1].Move(fyne.NewPos(origin.X+area.Width-r.ticks[1].MinSize().Width, origin.Y+area.Height+2))
	r.ticks[2].Move(fyne.NewPos(origin.X-r.ticks[2].MinSize().Width-4, origin.Y+area.Height-tickH))
	r.ticks[3].Move(fyne.NewPos(origin.X-r.ticks[3].MinSize().Width-4, origin.Y))

	for i := 1; i < gridDivisions; i++ {
		x := origin.X + area.Width*float32(i)/gridDivisions
		y := origin.Y + area.Height*float32(i)/gridDivisions
		v := r.grid[i-1]
		v.Position1, v.Position2 = fyne.NewPos(x, origin.Y), fyne.NewPos(x, origin.Y+area.Height)
		h := r.grid[gridDivisions-1+i-1]
		h.Position1, h.Position2 = fyne.NewPos(origin.X, y), fyne.NewPos(origin.X+area.Width, y)
	}

	xlo, xhi, ylo, yhi := axisRange(r.rows)
	point := func(x, y float64) (fyne.Position, bool) {
		if math.IsInf(y, 0) || math.IsNaN(y) {
			return fyne.Position{}, false
		}
		px := origin.X + float32((x-xlo)/(xhi-xlo))*area.Width
		py := origin.Y + area.Height - float32((y-ylo)/(yhi-ylo))*area.Height
		return fyne.NewPos(px, py), true
	}
	for k := range r.traces {
		for i, l := range r.traces[k] {
			a, okA := point(r.rows[i].GHz, r.rows[i].DB[k])
			b, okB := point(r.rows[i+1].GHz, r.rows[i+1].DB[k])
			if !okA || !okB {
				l.Hide()
				continue
			}
			l.Position1, l.Position2 = a, b
			l.Show()
		}
	}
}

func (r *plotRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 200)
}

func (r *plotRenderer) Refresh() {
	if len(r.rows) != len(r.plot.rows) || (len(r.rows) > 0 && &r.rows[0] != &r.plot.rows[0]) {
		r.rebuild()
	}
	r.Layout(r.plot.Size())
	canvas.Refresh(r.plot)
}

func (r *plotRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.frame}
	for _, g := range r.grid {
		objs = append(objs, g)
	}
	for _, tr := range r.traces {
		for _, l := range tr {
			objs = append(objs, l)
		}
	}
	objs = append(objs, r.title, r.xLabel, r.yLabel)
	for _, t := range r.ticks {
		objs = append(objs, t)
	}
	for _, l := range r.legend {
		objs = append(objs, l)
	}
	return objs
}

func (r *plotRenderer) Destroy() {}
