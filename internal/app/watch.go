package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// LayoutWatcher reports changes to a layout file made by other programs.
// The directory is watched so editors that replace the file are noticed.
type LayoutWatcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   *log.Logger

	mu          sync.Mutex
	timer       *time.Timer
	ignoreUntil time.Time
	done        chan struct{}
}

// WatchLayout starts watching path. onChange is called from a background
// goroutine at most once per debounce interval.
func WatchLayout(path string, debounce time.Duration, onChange func(path string), logger *log.Logger) (*LayoutWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	lw := &LayoutWatcher{
		w:        w,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go lw.loop()
	return lw, nil
}

// IgnoreFor suppresses notifications for d, e.g. around our own saves.
func (lw *LayoutWatcher) IgnoreFor(d time.Duration) {
	lw.mu.Lock()
	lw.ignoreUntil = time.Now().Add(d)
	lw.mu.Unlock()
}

// Close stops watching.
func (lw *LayoutWatcher) Close() error {
	lw.mu.Lock()
	if lw.timer != nil {
		lw.timer.Stop()
	}
	lw.mu.Unlock()
	err := lw.w.Close()
	<-lw.done
	return err
}

func (lw *LayoutWatcher) loop() {
	defer close(lw.done)
	for {
		select {
		case ev, ok := <-lw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != lw.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				lw.schedule()
			}
		case err, ok := <-lw.w.Errors:
			if !ok {
				return
			}
			lw.logger.Warn("layout watch", "err", err)
		}
	}
}

func (lw *LayoutWatcher) schedule() {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if time.Now().Before(lw.ignoreUntil) {
		return
	}
	if lw.timer != nil {
		lw.timer.Stop()
	}
	lw.timer = time.AfterFunc(lw.debounce, func() {
		lw.mu.Lock()
		ignored := time.Now().Before(lw.ignoreUntil)
		lw.mu.Unlock()
		if !ignored {
			lw.logger.Debug("layout changed on disk", "path", lw.path)
			lw.onChange(lw.path)
		}
	})
}
