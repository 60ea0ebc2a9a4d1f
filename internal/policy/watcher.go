package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raysh454/vexora/internal/logging"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc observes every reload attempt. err is nil on success.
type ReloadFunc func(p *Policy, err error)

// Watcher reloads a policy file into a Store whenever it changes. A file that
// fails to load leaves the last good policy active.
type Watcher struct {
	path     string
	store    *Store
	logger   logging.Logger
	debounce time.Duration
	onReload ReloadFunc

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher watches the directory containing path; watching the directory
// survives editors that replace the file by rename.
func NewWatcher(path string, store *Store, logger logging.Logger, onReload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create policy watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("resolve policy path: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch policy directory: %w", err)
	}
	return &Watcher{
		path:     abs,
		store:    store,
		logger:   logger.With(logging.Field{Key: "component", Value: "policy-watcher"}),
		debounce: DefaultDebounce,
		onReload: onReload,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce overrides the debounce window. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start runs the event loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("watching policy file", logging.Field{Key: "path", Value: w.path})
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("policy watcher error", logging.Field{Key: "error", Value: err.Error()})
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	p, err := Load(w.path)
	if err != nil {
		w.logger.Warn("policy reload failed; keeping previous policy",
			logging.Field{Key: "path", Value: w.path},
			logging.Field{Key: "error", Value: err.Error()})
		if w.onReload != nil {
			w.onReload(nil, err)
		}
		return
	}
	w.store.Replace(p)
	w.logger.Info("policy reloaded",
		logging.Field{Key: "path", Value: w.path},
		logging.Field{Key: "version", Value: p.Version})
	if w.onReload != nil {
		w.onReload(p, nil)
	}
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
