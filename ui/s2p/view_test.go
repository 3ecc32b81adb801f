package s2p

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"board-tester/internal/touchstone"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewLoad(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	dir := t.TempDir()
	path := filepath.Join(dir, "amp.s2p")
	require.NoError(t, os.WriteFile(path, []byte("# MHz S MA R 50\n100 0.5 -30 10 90 0.01 0 0.1 180\n250 0.5 -60 5 45 0.001 10 1 0\n"), 0o644))

	v := New(a.NewWindow("test"), nil)
	require.NoError(t, v.Load(path))

	rows, cols := v.table.Length()
	assert.Equal(t, 2, rows)
	assert.Equal(t, len(headers), cols)
	assert.Equal(t, "0.100", v.cell(0, 0))
	assert.Equal(t, "-6.02", v.cell(0, 1))
	assert.Equal(t, "20.00", v.cell(0, 2))
	assert.Equal(t, "0.250", v.cell(1, 0))
	assert.Equal(t, "-60.00", v.cell(1, 3))
	assert.Equal(t, "amp.s2p: 2 points, MA format, Z0 50 Ohm", v.status.Text)
	assert.Len(t, v.plot.rows, 2)

	bad := filepath.Join(dir, "bad.s2p")
	require.NoError(t, os.WriteFile(bad, []byte("# GHz S MA\n1 2 3\n"), 0o644))
	err := v.Load(bad)
	require.ErrorIs(t, err, touchstone.ErrSyntax)
	rows, _ = v.table.Length()
	assert.Zero(t, rows)
	assert.Empty(t, v.plot.rows)
	assert.Contains(t, v.status.Text, "Error: ")
}

func TestAxisRange(t *testing.T) {
	xlo, xhi, ylo, yhi := axisRange([]touchstone.Row{
		{GHz: 1, DB: [4]float64{-3, 12, math.Inf(-1), -20}},
		{GHz: 2, DB: [4]float64{-6, 10, -40, -18}},
	})
	assert.Equal(t, []float64{1, 2, -40, 12}, []float64{xlo, xhi, ylo, yhi})

	xlo, xhi, ylo, yhi = axisRange([]touchstone.Row{{GHz: 3, DB: [4]float64{-5, -5, -5, -5}}})
	assert.Equal(t, []float64{2.5, 3.5, -6, -4}, []float64{xlo, xhi, ylo, yhi})

	xlo, xhi, ylo, yhi = axisRange(nil)
	assert.Equal(t, []float64{0, 1, -1, 0}, []float64{xlo, xhi, ylo, yhi})
}

func TestPlotRendersSegments(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p := NewPlot()
	r := test.WidgetRenderer(p).(*plotRenderer)
	p.SetRows([]touchstone.Row{
		{GHz: 1, DB: [4]float64{-3, 12, math.Inf(-1), -20}},
		{GHz: 2, DB: [4]float64{-6, 10, -40, -18}},
		{GHz: 3, DB: [4]float64{-9, 8, -42, -16}},
	})
	for k := range r.traces {
		assert.Len(t, r.traces[k], 2)
	}

	r.Layout(r.MinSize().Add(r.MinSize()))
	assert.False(t, r.traces[2][0].Visible())
	assert.True(t, r.traces[2][1].Visible())
	assert.Less(t, r.traces[1][0].Position2.Y, r.traces[0][0].Position2.Y)
	assert.Equal(t, "1.000", r.ticks[0].Text)
	assert.Equal(t, "12.0", r.ticks[3].Text)
}
