package mainwindow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"board-tester/internal/app"
	"board-tester/internal/config"
	"board-tester/ui/prefs"

	"fyne.io/fyne/v2/test"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardLayout = `{
  "version": 1,
  "board_name": "PSU",
  "canvas": {"type": "blank", "size": [300, 200]},
  "fields": [
    {"id": "VOUT", "rect": {"x": 10, "y": 10, "w": 80, "h": 24}, "input": {"type": "number", "units": ["V"]}},
    {"id": "NOTE", "rect": {"x": 10, "y": 50, "w": 120, "h": 24}, "input": {"type": "text"}}
  ]
}`

func newTestWindow(t *testing.T) *MainWindow {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.OCR = false
	cfg.DBPath = filepath.Join(dir, "log.db")
	cfg.LayoutsDir = dir

	state := app.NewState(cfg, nil, nil)
	t.Cleanup(func() { state.Close() })
	return New(context.Background(), a, state, prefs.LoadFrom(filepath.Join(dir, "prefs.json")), log.Default())
}

func TestOpenLayoutAppliesBeforeReturning(t *testing.T) {
	mw := newTestWindow(t)
	path := filepath.Join(t.TempDir(), "psu.json")
	require.NoError(t, os.WriteFile(path, []byte(boardLayout), 0o644))

	mw.openLayout(path)

	doc := mw.state.Editor.Document()
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, []string{"VOUT", "NOTE"}, doc.IDs())
	assert.Equal(t, path, mw.prefs.String(prefs.KeyLastLayout))
	assert.Equal(t, "Loaded psu.json: 2 fields", mw.statusBar.Text)
}

func TestOpenLayoutFailureKeepsDocument(t *testing.T) {
	mw := newTestWindow(t)
	before := mw.state.Editor.Document()

	mw.openLayout(filepath.Join(t.TempDir(), "missing.json"))

	assert.Same(t, before, mw.state.Editor.Document())
	assert.Equal(t, "Load failed", mw.statusBar.Text)
	assert.Empty(t, mw.prefs.String(prefs.KeyLastLayout))
}

func TestChangedOnDiskAsksOnce(t *testing.T) {
	mw := newTestWindow(t)
	overlays := len(mw.Canvas().Overlays().List())

	done := make(chan struct{})
	go func() {
		mw.onChangedOnDisk("/tmp/psu.json")
		close(done)
	}()
	mw.onChangedOnDisk("/tmp/psu.json")
	<-done

	assert.True(t, mw.reloadPending.Load())
	assert.Len(t, mw.Canvas().Overlays().List(), overlays+1)
}
