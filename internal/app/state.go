// Package app ties the editor, rendering, export and the run log together
// behind an event-driven application state.
package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"time"

	"board-tester/internal/config"
	"board-tester/internal/editor"
	"board-tester/internal/history"
	"board-tester/internal/layout"
	"board-tester/internal/render"
	"board-tester/internal/store"

	"github.com/charmbracelet/log"
)

// Title is the application name shown in window titles.
const Title = "Board Tester"

// EventType identifies different application events.
type EventType int

const (
	EventLayoutLoaded EventType = iota
	EventLayoutSaved
	EventCanvasChanged
	EventModified
	EventModeChanged
	EventSelectionChanged
	EventExported
	EventLayoutChangedOnDisk
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// RunLog is the persistence log used by export and history.
type RunLog interface {
	history.Source
	Exists(ctx context.Context, runID string) (bool, error)
	InsertRun(ctx context.Context, run store.Run, measurements []store.Measurement) error
}

// State holds the application state: the open layout, its editor and the
// services the workflows use.
type State struct {
	mu sync.RWMutex

	Config config.Config
	Editor *editor.Editor

	modified bool

	renderer render.Renderer
	runLog   RunLog
	watcher  *LayoutWatcher
	watching bool
	watched  string
	now      func() time.Time
	logger   *log.Logger

	listeners map[EventType][]EventListener
}

// NewState creates the application state with an empty blank-canvas layout.
func NewState(cfg config.Config, renderer render.Renderer, logger *log.Logger) *State {
	if logger == nil {
		logger = log.Default()
	}
	if renderer == nil {
		renderer = render.NewBackground(logger)
	}
	s := &State{
		Config:    cfg,
		Editor:    editor.New(logger),
		renderer:  renderer,
		now:       time.Now,
		logger:    logger.WithPrefix("app"),
		listeners: make(map[EventType][]EventListener),
	}
	s.Editor.OnModified(func() { s.SetModified(true) })
	s.Editor.OnSelectionChanged(func(id string) { s.Emit(EventSelectionChanged, id) })
	return s
}

// SetClock replaces the clock used for run ids.
func (s *State) SetClock(now func() time.Time) { s.now = now }

// SetRunLog replaces the run log. By default the log at Config.DBPath is
// opened on first use.
func (s *State) SetRunLog(l RunLog) {
	s.mu.Lock()
	s.runLog = l
	s.mu.Unlock()
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the layout as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Modified reports whether the layout has unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// WindowTitle returns the title for the main window: the layout file name,
// with a trailing * when modified.
func (s *State) WindowTitle() string {
	doc := s.Editor.Document()
	if doc.Path == "" {
		if s.Modified() {
			return Title + " *"
		}
		return Title
	}
	title := Title + " - " + filepath.Base(doc.Path)
	if s.Modified() {
		title += " *"
	}
	return title
}

// SetMode switches the editor mode.
func (s *State) SetMode(m editor.Mode) {
	s.Editor.SetMode(m)
	s.Emit(EventModeChanged, m)
}

// NewLayout replaces the open layout with an empty one on the configured
// blank canvas.
func (s *State) NewLayout(boardName string) {
	doc := layout.New(boardName)
	doc.SetCanvas(s.Config.Blank.Canvas())
	bg, _ := s.renderBackground(context.Background(), doc)
	s.applyLayout(&Loaded{Doc: doc, Background: bg})
}

// Loaded is a layout read from disk with its rendered background.
type Loaded struct {
	Doc        *layout.Document
	Background image.Image

	// BackgroundErr is set when rendering failed; the layout is still usable.
	BackgroundErr error
}

// prepareLayout reads path and renders its background without touching the
// editor.
func (s *State) prepareLayout(ctx context.Context, path string) (*Loaded, error) {
	doc, err := layout.Load(path)
	if err != nil {
		return nil, err
	}
	bg, err := s.renderBackground(ctx, doc)
	return &Loaded{Doc: doc, Background: bg, BackgroundErr: err}, nil
}

// applyLayout hands a prepared layout to the editor.
func (s *State) applyLayout(l *Loaded) {
	s.Editor.SetDocument(l.Doc, l.Background)
	s.SetModified(false)
	s.rewatch()
	s.logger.Info("layout loaded", "path", l.Doc.Path, "fields", len(l.Doc.Fields))
	s.Emit(EventLayoutLoaded, l)
}

// LoadLayout reads, renders and applies path. It drives the editor, so it
// must be called from the UI goroutine. On error the open layout is
// unchanged. A background failure is returned in Loaded.BackgroundErr.
func (s *State) LoadLayout(ctx context.Context, path string) (*Loaded, error) {
	l, err := s.prepareLayout(ctx, path)
	if err != nil {
		return nil, err
	}
	s.applyLayout(l)
	return l, nil
}

// SaveLayout writes the open layout to path.
func (s *State) SaveLayout(path string) error {
	doc := s.Editor.Document()
	s.mu.RLock()
	w := s.watcher
	s.mu.RUnlock()
	if w != nil {
		w.IgnoreFor(time.Second)
	}
	if err := doc.Save(path); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	s.SetModified(false)
	s.rewatch()
	s.logger.Info("layout saved", "path", path)
	s.Emit(EventLayoutSaved, path)
	return nil
}

// SetCanvas replaces the canvas of the open layout and re-renders the
// background. The canvas is applied even if rendering fails.
func (s *State) SetCanvas(ctx context.Context, cfg layout.CanvasConfig) error {
	doc := s.Editor.Document()
	doc.SetCanvas(cfg)
	bg, err := s.renderBackground(ctx, doc)
	s.Editor.NotifyCanvasChanged(bg)
	s.SetModified(true)
	s.Emit(EventCanvasChanged, cfg)
	return err
}

func (s *State) renderBackground(ctx context.Context, doc *layout.Document) (image.Image, error) {
	cfg := doc.EffectiveCanvas()
	if cfg.NeedsFile() {
		cfg.Path = cfg.ResolvePath(doc.Path)
	}
	bg, err := s.renderer.Render(ctx, cfg)
	if err != nil {
		s.logger.Warn("background unavailable", "canvas", cfg.Type, "path", cfg.Path, "err", err)
		return nil, fmt.Errorf("render %s background: %w", cfg.Type, err)
	}
	return bg, nil
}

// RunLog returns the run log, opening it on first use.
func (s *State) RunLog(ctx context.Context) (RunLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runLog != nil {
		return s.runLog, nil
	}
	l, err := store.Open(ctx, s.Config.DBPath, s.logger)
	if err != nil {
		return nil, err
	}
	s.runLog = l
	return l, nil
}

// History returns a pivot engine over the run log.
func (s *State) History(ctx context.Context) (*history.Engine, error) {
	l, err := s.RunLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return history.NewEngine(l, s.logger), nil
}

// WatchLayouts enables reload notifications for the open layout file.
// EventLayoutChangedOnDisk carries the absolute path and is emitted from the
// watcher goroutine; listeners must not touch the editor.
func (s *State) WatchLayouts(enabled bool) {
	s.mu.Lock()
	s.watching = enabled
	s.mu.Unlock()
	s.rewatch()
}

func (s *State) rewatch() {
	s.mu.Lock()
	old := s.watcher
	s.watcher = nil
	enabled := s.watching
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	path := s.Editor.Document().Path
	if !enabled || path == "" {
		s.setWatched("")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.setWatched("")
		return
	}
	s.setWatched(abs)
	w, err := WatchLayout(abs, 300*time.Millisecond, func(p string) {
		// A timer of a closed watcher may still fire once.
		if p == s.watchedPath() {
			s.Emit(EventLayoutChangedOnDisk, p)
		}
	}, s.logger)
	if err != nil {
		s.logger.Warn("cannot watch layout", "path", path, "err", err)
		return
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
}

func (s *State) setWatched(path string) {
	s.mu.Lock()
	s.watched = path
	s.mu.Unlock()
}

func (s *State) watchedPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watched
}

// Close releases the watcher and the run log.
func (s *State) Close() error {
	s.mu.Lock()
	w, l := s.watcher, s.runLog
	s.watcher, s.runLog = nil, nil
	s.mu.Unlock()
	if w != nil {
		w.Close()
	}
	if c, ok := l.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
