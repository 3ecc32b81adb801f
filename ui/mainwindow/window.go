// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"board-tester/internal/app"
	"board-tester/internal/config"
	"board-tester/internal/editor"
	"board-tester/internal/layout"
	"board-tester/internal/ocr"
	"board-tester/internal/version"
	"board-tester/ui/canvas"
	"board-tester/ui/compare"
	"board-tester/ui/dialogs"
	"board-tester/ui/imviewer"
	"board-tester/ui/prefs"
	"board-tester/ui/s2p"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
)

// AppID identifies the application to fyne's preference store.
const AppID = "io.github.boardtester"

const prefKeyLastDir = "lastDirectory"

const (
	modeEntry  = "Entry"
	modeLayout = "Layout"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	ctx    context.Context
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	canvas *canvas.FieldCanvas
	ocr    *ocr.Engine
	logger *log.Logger

	tabs *container.AppTabs
	s2p  *s2p.View
	im   *imviewer.View

	statusBar *widget.Label
	modeRadio *widget.RadioGroup
	logCheck  *widget.Check
	addBtn    *widget.Button
	editBtn   *widget.Button
	deleteBtn *widget.Button

	lastMeta      app.RunMeta
	reloadPending atomic.Bool
}

// Run opens the main window and blocks until it is closed. layoutPath, or
// else the last layout in the preferences, is loaded at start.
func Run(ctx context.Context, cfg config.Config, layoutPath string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	fyneApp := fyneapp.NewWithID(AppID)
	fyneApp.Settings().SetTheme(&app.BoardTesterTheme{})

	state := app.NewState(cfg, nil, logger)
	defer state.Close()

	mw := New(ctx, fyneApp, state, prefs.Load(), logger)
	defer mw.shutdown()

	if layoutPath == "" {
		if last := mw.prefs.String(prefs.KeyLastLayout); last != "" {
			if _, err := layout.Load(last); err == nil {
				layoutPath = last
			}
		}
	}
	if layoutPath != "" {
		mw.openLayout(layoutPath)
	}

	mw.ShowAndRun()
	return nil
}

// New creates the main window.
func New(ctx context.Context, fyneApp fyne.App, state *app.State, p *prefs.Prefs, logger *log.Logger) *MainWindow {
	mw := &MainWindow{
		Window: fyneApp.NewWindow(app.Title),
		ctx:    ctx,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		logger: logger.WithPrefix("ui"),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEditor()
	mw.setupEventHandlers()

	w := p.FloatWithFallback(prefs.KeyWindowW, 1280)
	h := p.FloatWithFallback(prefs.KeyWindowH, 860)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
	mw.SetCloseIntercept(mw.onClose)
	mw.state.WatchLayouts(true)
	mw.state.NewLayout("")
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewFieldCanvas(mw.state.Editor)
	mw.statusBar = widget.NewLabel("Ready")

	editorTab := container.NewBorder(
		mw.createToolbar(),
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		mw.canvas.Container(),
	)
	mw.s2p = s2p.New(mw.Window, mw.logger)
	mw.im = imviewer.New(mw.Window, mw.logger)

	mw.tabs = container.NewAppTabs(
		container.NewTabItem("Layout Editor", editorTab),
		container.NewTabItem("S2P Viewer", mw.s2p.Content()),
		container.NewTabItem("IM Viewer", mw.im.Content()),
	)
	mw.SetContent(mw.tabs)
}

// createToolbar creates the mode switch and the layout and export actions.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeRadio = widget.NewRadioGroup([]string{modeEntry, modeLayout}, mw.onModeSelected)
	mw.modeRadio.Horizontal = true
	mw.modeRadio.Required = true
	mw.modeRadio.SetSelected(modeEntry)

	mw.addBtn = widget.NewButton("Add Field", mw.onAddField)
	mw.editBtn = widget.NewButton("Edit", mw.state.Editor.EditSelected)
	mw.deleteBtn = widget.NewButton("Delete", mw.onDeleteField)
	mw.addBtn.Disable()
	mw.editBtn.Disable()
	mw.deleteBtn.Disable()

	mw.logCheck = widget.NewCheck("Log to DB", func(on bool) {
		mw.prefs.SetBool(prefs.KeyLogToDB, on)
	})
	mw.logCheck.SetChecked(mw.prefs.Bool(prefs.KeyLogToDB, mw.state.Config.LogToDB))

	return container.NewHBox(
		widget.NewButton("Open", mw.onOpenLayout),
		widget.NewButton("Pick", mw.onPickLayout),
		widget.NewButton("Save", mw.onSaveLayout),
		widget.NewSeparator(),
		widget.NewLabel("Mode:"),
		mw.modeRadio,
		widget.NewSeparator(),
		widget.NewButton("Canvas", mw.onCanvasSettings),
		mw.addBtn,
		mw.editBtn,
		mw.deleteBtn,
		widget.NewSeparator(),
		widget.NewButton("Export", mw.onExport),
		mw.logCheck,
		widget.NewButton("History", mw.onHistory),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Layout", mw.onNewLayout),
		fyne.NewMenuItem("Open Layout...", mw.onOpenLayout),
		fyne.NewMenuItem("Pick Layout...", mw.onPickLayout),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Layout", mw.onSaveLayout),
		fyne.NewMenuItem("Save Layout As...", mw.onSaveLayoutAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Values...", mw.onExport),
	)

	layoutMenu := fyne.NewMenu("Layout",
		fyne.NewMenuItem("Canvas Settings...", mw.onCanvasSettings),
		fyne.NewMenuItem("Add Field", mw.onAddField),
		fyne.NewMenuItem("Edit Field...", mw.state.Editor.EditSelected),
		fyne.NewMenuItem("Delete Field", mw.onDeleteField),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Run History...", mw.onHistory),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, layoutMenu, toolsMenu, helpMenu))
}

// setupEditor attaches the canvas, dialogs and OCR to the editor.
func (mw *MainWindow) setupEditor() {
	ed := mw.state.Editor
	ed.SetSurface(mw.canvas)
	prompter := dialogs.NewPrompter(mw.Window)
	ed.SetPrompter(prompter)
	ed.SetNotifier(prompter)

	if mw.state.Config.OCR {
		engine, err := ocr.NewEngine()
		if err != nil {
			mw.logger.Warn("id suggestions disabled", "err", err)
		} else {
			mw.ocr = engine
			ed.SetSuggester(engine)
		}
	}

	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDeleteField()
		case fyne.KeyEscape:
			ed.DisarmAddField()
		}
	})
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventLayoutLoaded, func(data interface{}) {
		mw.refreshTitle()
		mw.updateSelection("")
		if l, ok := data.(*app.Loaded); ok {
			mw.updateStatus(fmt.Sprintf("Loaded %s: %d fields", l.Doc.Name(), len(l.Doc.Fields)))
		}
	})

	mw.state.On(app.EventLayoutSaved, func(data interface{}) {
		mw.refreshTitle()
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.refreshTitle()
	})

	mw.state.On(app.EventModeChanged, func(data interface{}) {
		m, _ := data.(editor.Mode)
		layoutMode := m == editor.ModeLayout
		mw.canvas.SetInteractive(layoutMode)
		if layoutMode {
			mw.addBtn.Enable()
		} else {
			mw.addBtn.Disable()
		}
		mw.updateSelection(mw.state.Editor.Selected())
		mw.updateStatus(m.String() + " Mode")
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		mw.updateSelection(id)
	})

	mw.state.On(app.EventCanvasChanged, func(interface{}) {
		mw.updateStatus("Canvas updated")
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		if res, ok := data.(*app.ExportResult); ok {
			mw.updateStatus(fmt.Sprintf("Exported run %s (%d rows) to %s", res.RunID, res.Rows, res.Path))
		}
	})

	mw.state.On(app.EventLayoutChangedOnDisk, func(data interface{}) {
		path, _ := data.(string)
		mw.onChangedOnDisk(path)
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) refreshTitle() {
	mw.SetTitle(mw.state.WindowTitle())
}

// updateSelection enables the field actions only for a selection in Layout
// Mode.
func (mw *MainWindow) updateSelection(id string) {
	if id != "" && mw.state.Editor.Mode() == editor.ModeLayout {
		mw.editBtn.Enable()
		mw.deleteBtn.Enable()
		mw.updateStatus("Selected " + id)
		return
	}
	mw.editBtn.Disable()
	mw.deleteBtn.Disable()
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		path = mw.state.Config.LayoutsDir
	}
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(abs))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onModeSelected(s string) {
	m := editor.ModeEntry
	if s == modeLayout {
		m = editor.ModeLayout
	}
	if m != mw.state.Editor.Mode() {
		mw.state.SetMode(m)
	}
}

func (mw *MainWindow) onNewLayout() {
	mw.confirmDiscard(func() {
		mw.state.NewLayout("")
		mw.updateStatus("New layout")
	})
}

func (mw *MainWindow) onOpenLayout() {
	mw.confirmDiscard(func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			path := reader.URI().Path()
			mw.saveLastDir(path)
			mw.openLayout(path)
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Resize(fyne.NewSize(900, 600))
		fd.Show()
	})
}

func (mw *MainWindow) onPickLayout() {
	dir := mw.state.Config.LayoutsDir
	paths, err := layout.List(dir)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	dialogs.ShowLayoutPicker(mw.Window, dir, paths, func(path string) {
		mw.confirmDiscard(func() { mw.openLayout(path) })
	})
}

// openLayout loads path into the editor. A failed load keeps the open
// layout.
func (mw *MainWindow) openLayout(path string) {
	loaded, err := mw.state.LoadLayout(mw.ctx, path)
	if err != nil {
		mw.logger.Error("load failed", "path", path, "err", err)
		mw.updateStatus("Load failed")
		dialog.ShowError(fmt.Errorf("load %s: %w", filepath.Base(path), err), mw.Window)
		return
	}
	mw.prefs.SetString(prefs.KeyLastLayout, path)
	if loaded.BackgroundErr != nil {
		dialog.ShowInformation("Background unavailable",
			"The layout was loaded on an empty canvas.\n\n"+loaded.BackgroundErr.Error(), mw.Window)
	}
}

func (mw *MainWindow) onSaveLayout() {
	path := mw.state.Editor.Document().Path
	if path == "" {
		mw.onSaveLayoutAs()
		return
	}
	mw.saveLayout(path)
}

func (mw *MainWindow) onSaveLayoutAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			path += ".json"
		}
		mw.saveLastDir(path)
		mw.saveLayout(path)
	}, mw.Window)
	doc := mw.state.Editor.Document()
	name := "layout.json"
	if doc.BoardName != "" {
		name = doc.BoardName + ".json"
	}
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Resize(fyne.NewSize(900, 600))
	fd.Show()
}

func (mw *MainWindow) saveLayout(path string) {
	if err := mw.state.SaveLayout(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.prefs.SetString(prefs.KeyLastLayout, path)
}

func (mw *MainWindow) onCanvasSettings() {
	doc := mw.state.Editor.Document()
	dialogs.NewCanvasDialog(doc.EffectiveCanvas(), mw.Window, func(cfg layout.CanvasConfig) {
		if err := mw.state.SetCanvas(mw.ctx, cfg); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}).Show()
}

func (mw *MainWindow) onAddField() {
	if mw.state.Editor.Mode() != editor.ModeLayout {
		mw.updateStatus("Switch to Layout Mode to add fields")
		return
	}
	if mw.state.Editor.ArmAddField() {
		mw.updateStatus("Drag a rectangle on the canvas to place the field")
	}
}

func (mw *MainWindow) onDeleteField() {
	id := mw.state.Editor.Selected()
	if id == "" || mw.state.Editor.Mode() != editor.ModeLayout {
		return
	}
	dialog.ShowConfirm("Delete Field", fmt.Sprintf("Delete field %s?", id), func(ok bool) {
		if ok && mw.state.Editor.DeleteSelected() {
			mw.updateStatus("Deleted " + id)
		}
	}, mw.Window)
}

// onExport runs the export workflow: metadata prompts, destination file,
// then the export itself.
func (mw *MainWindow) onExport() {
	run, err := mw.state.BeginRun()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	dialogs.ShowRunMeta(mw.Window, run, mw.lastMeta, func(meta app.RunMeta, ok bool) {
		if !ok {
			mw.updateStatus("Export cancelled")
			return
		}
		mw.lastMeta = app.RunMeta{Operator: meta.Operator, Lot: meta.Lot}
		mw.chooseExportFile(run, meta)
	})
}

func (mw *MainWindow) chooseExportFile(run app.Run, meta app.RunMeta) {
	format := mw.state.Config.ExportFormat
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) == "" {
			path += "." + format
		}
		mw.saveLastDir(path)
		mw.export(run, meta, path)
	}, mw.Window)
	fd.SetFileName(run.SuggestedFileName(format))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx", ".csv"}))
	if dir, err := filepath.Abs(mw.state.Config.ExportDir); err == nil {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Resize(fyne.NewSize(900, 600))
	fd.Show()
}

func (mw *MainWindow) export(run app.Run, meta app.RunMeta, path string) {
	res, err := mw.state.Export(mw.ctx, run, meta, path, mw.logCheck.Checked)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	msg := fmt.Sprintf("Exported %d values to\n%s", res.Rows, res.Path)
	if mw.logCheck.Checked && res.LogErr == nil {
		msg += "\n\nLogged as run " + res.RunID
	}
	if res.LogErr != nil {
		msg += "\n\nThe run was not logged:\n" + res.LogErr.Error()
	}
	dialog.ShowInformation("Export", msg, mw.Window)
}

func (mw *MainWindow) onHistory() {
	engine, err := mw.state.History(mw.ctx)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	compare.Show(mw.ctx, mw.app, engine, mw.logger)
}

// onChangedOnDisk offers to reload a layout edited outside the application.
// It is called from the watcher goroutine, so the editor is only consulted
// once the operator answers.
func (mw *MainWindow) onChangedOnDisk(path string) {
	if !mw.reloadPending.CompareAndSwap(false, true) {
		return
	}
	msg := filepath.Base(path) + " changed on disk. Reload it?"
	if mw.state.Modified() {
		msg += "\nUnsaved changes will be lost."
	}
	dialog.ShowConfirm("Layout Changed", msg, func(ok bool) {
		mw.reloadPending.Store(false)
		if !ok {
			return
		}
		if cur, err := filepath.Abs(mw.state.Editor.Document().Path); err != nil || cur != path {
			return
		}
		mw.openLayout(path)
	}, mw.Window)
}

// confirmDiscard runs next directly, or after confirmation when the open
// layout has unsaved changes.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.Modified() {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard changes to the open layout?", func(ok bool) {
		if ok {
			next()
		}
	}, mw.Window)
}

func (mw *MainWindow) onClose() {
	mw.confirmDiscard(func() {
		size := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
		mw.Close()
	})
}

func (mw *MainWindow) shutdown() {
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("preferences not saved", "err", err)
	}
	if mw.ocr != nil {
		mw.ocr.Close()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+app.Title,
		fmt.Sprintf("%s v%s\n\n"+
			"Enter board test measurements on a PDF, image or blank canvas,\n"+
			"export them and compare logged runs.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			app.Title, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
